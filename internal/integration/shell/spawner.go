package shell

import (
	"io"
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/creack/pty"

	"github.com/dshills/mcode/internal/integration/process"
)

// Spec describes the shell to launch.
type Spec struct {
	// Shell is the program to run, started without arguments.
	Shell string

	// Dir is the working directory; empty inherits the editor's.
	Dir string

	// Env is appended to the editor's environment.
	Env []string

	// Cols and Rows size the PTY. Ignored by the pipe spawner.
	Cols, Rows uint16
}

// Child is a running shell as seen by a Session. Read yields stdout and
// stderr interleaved; Write feeds stdin.
type Child interface {
	io.Reader
	io.Writer

	// Done is closed when the process exits.
	Done() <-chan struct{}

	// ExitCode is valid once Done is closed.
	ExitCode() int

	// Stop terminates the process, killing it after timeout. It blocks
	// until the process has exited.
	Stop(timeout time.Duration)

	// Close releases the I/O handles.
	Close() error
}

// Spawner launches shells.
type Spawner interface {
	Spawn(spec Spec) (Child, error)
}

// DefaultShell returns $SHELL, falling back to /bin/sh.
func DefaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

func command(spec Spec) *exec.Cmd {
	cmd := exec.Command(spec.Shell)
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), spec.Env...)
	return cmd
}

// PipeSpawner runs the shell with plain pipes through a supervisor.
type PipeSpawner struct {
	Supervisor *process.Supervisor
}

// Spawn starts the shell with stdin, and a shared stdout/stderr pipe.
func (s PipeSpawner) Spawn(spec Spec) (Child, error) {
	proc, err := s.Supervisor.Start("shell", command(spec))
	if err != nil {
		return nil, err
	}
	return &processChild{proc: proc, r: proc.Output, w: proc.Stdin}, nil
}

// PTYSpawner runs the shell on a pseudo-terminal so it behaves
// interactively (prompts, job control).
type PTYSpawner struct {
	Supervisor *process.Supervisor
}

// Spawn opens a PTY pair and starts the shell as a session leader with
// the PTY as its controlling terminal.
func (s PTYSpawner) Spawn(spec Spec) (Child, error) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		return nil, err
	}

	cols, rows := spec.Cols, spec.Rows
	if cols == 0 || rows == 0 {
		cols, rows = 80, 24
	}
	if err := pty.Setsize(ptmx, &pty.Winsize{Cols: cols, Rows: rows}); err != nil {
		_ = ptmx.Close()
		_ = tty.Close()
		return nil, err
	}

	cmd := command(spec)
	cmd.Env = append(cmd.Env, "TERM=dumb")
	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true}

	proc, err := s.Supervisor.Start("shell", cmd)
	// The child holds its own copy of the terminal side.
	_ = tty.Close()
	if err != nil {
		_ = ptmx.Close()
		return nil, err
	}
	proc.AddCloser(ptmx)
	return &processChild{proc: proc, r: ptmx, w: ptmx}, nil
}

// processChild adapts a supervised process to Child.
type processChild struct {
	proc *process.Process
	r    io.Reader
	w    io.Writer
}

func (c *processChild) Read(p []byte) (int, error)  { return c.r.Read(p) }
func (c *processChild) Write(p []byte) (int, error) { return c.w.Write(p) }
func (c *processChild) Done() <-chan struct{}        { return c.proc.Done() }
func (c *processChild) ExitCode() int                { return c.proc.ExitCode() }
func (c *processChild) Stop(timeout time.Duration)   { c.proc.Stop(timeout) }
func (c *processChild) Close() error                 { return c.proc.Close() }
