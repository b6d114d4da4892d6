package process

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// State represents the state of a process.
type State int32

const (
	// StateCreated indicates the process has been created but not started.
	StateCreated State = iota
	// StateRunning indicates the process is currently running.
	StateRunning
	// StateExited indicates the process ended on its own.
	StateExited
	// StateKilled indicates the process was ended by a signal.
	StateKilled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateKilled:
		return "killed"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Process is a child started by a Supervisor: the shell behind a terminal
// session or an interpreter running the current file. The child leads its
// own process group so signals also reach anything it spawned.
type Process struct {
	// ID is unique within the supervisor.
	ID string

	// Name is the program label used in logs.
	Name string

	// Cmd is the underlying command.
	Cmd *exec.Cmd

	// Stdin is the write end of the child's stdin, nil when the caller
	// wired stdin itself.
	Stdin io.WriteCloser

	// Output carries stdout and stderr interleaved in arrival order, nil
	// when the caller wired the output itself.
	Output io.ReadCloser

	done     chan struct{}
	state    atomic.Int32
	exitCode atomic.Int32

	mu       sync.Mutex
	started  time.Time
	ended    time.Time
	exitErr  error
	closers  []io.Closer
	closeErr error

	closeOnce sync.Once
}

func newProcess(id, name string, cmd *exec.Cmd) *Process {
	p := &Process{
		ID:   id,
		Name: name,
		Cmd:  cmd,
		done: make(chan struct{}),
	}
	p.exitCode.Store(-1)
	return p
}

// State returns the current process state.
func (p *Process) State() State {
	return State(p.state.Load())
}

// IsRunning reports whether the child has started and not yet exited.
func (p *Process) IsRunning() bool {
	return p.State() == StateRunning
}

// ExitCode returns the exit status, or -1 while the child runs or when it
// was ended by a signal.
func (p *Process) ExitCode() int {
	return int(p.exitCode.Load())
}

// ExitError returns the error from waiting on the child, nil for a clean
// exit.
func (p *Process) ExitError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitErr
}

// Done is closed once the child has exited.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// PID returns the process ID, or -1 before start.
func (p *Process) PID() int {
	if p.Cmd.Process == nil {
		return -1
	}
	return p.Cmd.Process.Pid
}

// Runtime returns how long the child has run, or ran if it has exited.
func (p *Process) Runtime() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.started.IsZero():
		return 0
	case p.ended.IsZero():
		return time.Since(p.started)
	default:
		return p.ended.Sub(p.started)
	}
}

// Signal sends sig to the child's process group.
func (p *Process) Signal(sig syscall.Signal) error {
	if !p.IsRunning() {
		return ErrNotRunning
	}
	pid := p.PID()
	if err := unix.Kill(-pid, sig); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return nil
		}
		// Not a group leader; signal the child alone.
		return p.Cmd.Process.Signal(sig)
	}
	return nil
}

// Terminate sends SIGTERM.
func (p *Process) Terminate() error {
	return p.Signal(unix.SIGTERM)
}

// Kill sends SIGKILL.
func (p *Process) Kill() error {
	return p.Signal(unix.SIGKILL)
}

// Stop sends SIGTERM and escalates to SIGKILL if the child is still alive
// after timeout. It returns once the child has exited and is a no-op for a
// child that is not running.
func (p *Process) Stop(timeout time.Duration) {
	if !p.IsRunning() {
		return
	}
	_ = p.Terminate()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-p.done:
	case <-timer.C:
		_ = p.Kill()
		<-p.done
	}
}

// AddCloser hands over a handle that Close releases, such as the PTY
// master behind a shell.
func (p *Process) AddCloser(c io.Closer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closers = append(p.closers, c)
}

// Close releases the child's I/O handles without signalling it. Later
// calls return the first result.
func (p *Process) Close() error {
	p.closeOnce.Do(func() {
		var errs []error
		if p.Stdin != nil {
			if err := p.Stdin.Close(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
				errs = append(errs, fmt.Errorf("close stdin: %w", err))
			}
		}
		if p.Output != nil {
			if err := p.Output.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close output: %w", err))
			}
		}

		p.mu.Lock()
		closers := p.closers
		p.mu.Unlock()
		for _, c := range closers {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		p.closeErr = errors.Join(errs...)
	})
	return p.closeErr
}

func (p *Process) start() error {
	if p.State() != StateCreated {
		return ErrAlreadyStarted
	}

	attr := p.Cmd.SysProcAttr
	if attr == nil {
		attr = &syscall.SysProcAttr{}
		p.Cmd.SysProcAttr = attr
	}
	// A session leader already heads its own group.
	if !attr.Setsid {
		attr.Setpgid = true
	}

	if err := p.Cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", p.Name, err)
	}

	p.mu.Lock()
	p.started = time.Now()
	p.mu.Unlock()
	p.state.Store(int32(StateRunning))

	go p.wait()
	return nil
}

func (p *Process) wait() {
	err := p.Cmd.Wait()

	code, state := 0, StateExited
	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		code = exitErr.ExitCode()
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
			state = StateKilled
		}
	default:
		code = -1
	}

	p.mu.Lock()
	p.exitErr = err
	p.ended = time.Now()
	p.mu.Unlock()

	p.exitCode.Store(int32(code))
	p.state.Store(int32(state))
	close(p.done)
}

// Sentinel errors.
var (
	// ErrNotRunning is returned when signalling a child that is not running.
	ErrNotRunning = errors.New("process not running")

	// ErrAlreadyStarted is returned when a process is started twice.
	ErrAlreadyStarted = errors.New("process already started")

	// ErrSupervisorShutdown is returned by Start after Shutdown.
	ErrSupervisorShutdown = errors.New("supervisor is shutting down")
)
