package process

import (
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Supervisor starts children and stops whatever is still running when the
// editor exits. It is safe for concurrent use.
type Supervisor struct {
	mu        sync.Mutex
	processes map[string]*Process
	closed    bool
	monitors  sync.WaitGroup
	logger    *zap.Logger
}

// SupervisorOption configures a Supervisor.
type SupervisorOption func(*Supervisor)

// WithLogger sets the supervisor's logger.
func WithLogger(l *zap.Logger) SupervisorOption {
	return func(s *Supervisor) {
		s.logger = l
	}
}

// NewSupervisor creates a supervisor.
func NewSupervisor(opts ...SupervisorOption) *Supervisor {
	s := &Supervisor{
		processes: make(map[string]*Process),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches cmd under a fresh ID. Stdin gets a pipe unless already
// set. When neither stdout nor stderr is set, both go to one pipe exposed
// as Process.Output.
func (s *Supervisor) Start(name string, cmd *exec.Cmd) (*Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSupervisorShutdown
	}

	proc := newProcess(uuid.NewString(), name, cmd)

	var opened []interface{ Close() error }
	release := func() {
		for _, c := range opened {
			_ = c.Close()
		}
	}

	if cmd.Stdin == nil {
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("create stdin pipe: %w", err)
		}
		proc.Stdin = stdin
		opened = append(opened, stdin)
	}

	var writeEnd *os.File
	if cmd.Stdout == nil && cmd.Stderr == nil {
		r, w, err := os.Pipe()
		if err != nil {
			release()
			return nil, fmt.Errorf("create output pipe: %w", err)
		}
		cmd.Stdout, cmd.Stderr = w, w
		proc.Output = r
		writeEnd = w
		opened = append(opened, r, w)
	}

	if err := proc.start(); err != nil {
		release()
		return nil, err
	}
	// The child holds its own copy; keeping ours would hide EOF.
	if writeEnd != nil {
		_ = writeEnd.Close()
	}

	s.processes[proc.ID] = proc
	s.logger.Debug("process started",
		zap.String("id", proc.ID),
		zap.String("name", name),
		zap.Int("pid", proc.PID()))

	s.monitors.Add(1)
	go s.monitor(proc)
	return proc, nil
}

func (s *Supervisor) monitor(proc *Process) {
	defer s.monitors.Done()
	<-proc.Done()

	s.logger.Debug("process exited",
		zap.String("id", proc.ID),
		zap.String("name", proc.Name),
		zap.Int("code", proc.ExitCode()),
		zap.Stringer("state", proc.State()),
		zap.Duration("runtime", proc.Runtime()))

	s.mu.Lock()
	delete(s.processes, proc.ID)
	s.mu.Unlock()
}

// Get returns the running process with id, or nil.
func (s *Supervisor) Get(id string) *Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processes[id]
}

// Count returns the number of running processes.
func (s *Supervisor) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.processes)
}

// Shutdown stops every running child, giving each timeout to exit on
// SIGTERM before it is killed, and refuses later starts. It returns once
// all children are gone.
func (s *Supervisor) Shutdown(timeout time.Duration) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	procs := make([]*Process, 0, len(s.processes))
	for _, p := range s.processes {
		procs = append(procs, p)
	}
	s.mu.Unlock()

	if len(procs) > 0 {
		s.logger.Info("stopping child processes", zap.Int("count", len(procs)))
	}

	var wg sync.WaitGroup
	for _, p := range procs {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Stop(timeout)
			_ = p.Close()
		}()
	}
	wg.Wait()
	s.monitors.Wait()
}
