package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dshills/mcode/internal/event"
)

// DefaultKillTimeout is how long Stop waits after SIGTERM before SIGKILL.
const DefaultKillTimeout = 2 * time.Second

// Poster delivers events to the editor loop.
type Poster interface {
	Post(ctx context.Context, ev event.Event) error
}

// Options configures a Session.
type Options struct {
	Spec        Spec
	Spawner     Spawner
	Poster      Poster
	KillTimeout time.Duration
	Logger      *zap.Logger
}

// Session is one interactive shell. A reader goroutine forwards output as
// event.ChildOutput and the exit as event.ChildExited; all decoding and
// display happens on the loop that receives them.
type Session struct {
	id          string
	spec        Spec
	spawner     Spawner
	killTimeout time.Duration
	logger      *zap.Logger

	mu      sync.Mutex
	poster  Poster
	child   Child
	cancel  context.CancelFunc
	started bool

	alive    atomic.Bool
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSession creates a session. It does not start the shell.
func NewSession(opts Options) *Session {
	if opts.Spec.Shell == "" {
		opts.Spec.Shell = DefaultShell()
	}
	if opts.KillTimeout <= 0 {
		opts.KillTimeout = DefaultKillTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	id := uuid.NewString()
	return &Session{
		id:          id,
		spec:        opts.Spec,
		spawner:     opts.Spawner,
		poster:      opts.Poster,
		killTimeout: opts.KillTimeout,
		logger:      opts.Logger.With(zap.String("session", id)),
	}
}

// ID returns the session identifier carried by its events.
func (s *Session) ID() string {
	return s.id
}

// Shell returns the program the session runs.
func (s *Session) Shell() string {
	return s.spec.Shell
}

// Alive reports whether the shell is running.
func (s *Session) Alive() bool {
	return s.alive.Load()
}

// Start launches the shell and the output drain. A launch failure is
// returned as *ProcessSpawnError.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}
	s.started = true

	child, err := s.spawner.Spawn(s.spec)
	if err != nil {
		s.logger.Warn("shell spawn failed", zap.String("shell", s.spec.Shell), zap.Error(err))
		return &ProcessSpawnError{Shell: s.spec.Shell, Err: err}
	}

	ctx, cancel := context.WithCancel(ctx)
	s.child = child
	s.cancel = cancel
	s.alive.Store(true)
	s.logger.Info("shell started", zap.String("shell", s.spec.Shell))

	s.wg.Add(1)
	go s.drain(ctx, child)
	return nil
}

// exitGrace is how long output may keep arriving after the shell exits.
// A background job that inherited the output pipe would otherwise hold
// the session open until it finishes.
const exitGrace = 200 * time.Millisecond

// drain forwards output and reports the exit. The session is marked dead
// as soon as the process is gone; output still readable within exitGrace
// is delivered before event.ChildExited.
func (s *Session) drain(ctx context.Context, child Child) {
	defer s.wg.Done()

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		s.read(ctx, child)
	}()

	select {
	case <-child.Done():
	case <-readDone:
		select {
		case <-child.Done():
		case <-ctx.Done():
			return
		}
	case <-ctx.Done():
		<-readDone
		return
	}
	if ctx.Err() != nil {
		<-readDone
		return
	}
	s.alive.Store(false)

	grace := time.NewTimer(exitGrace)
	defer grace.Stop()
	select {
	case <-readDone:
	case <-grace.C:
		s.logger.Debug("shell output still open after exit; closing")
		if err := child.Close(); err != nil {
			s.logger.Debug("close shell handles", zap.Error(err))
		}
		<-readDone
	case <-ctx.Done():
		<-readDone
		return
	}

	code := child.ExitCode()
	s.logger.Info("shell exited", zap.Int("code", code))
	s.post(ctx, event.ChildExited{Header: event.Now(), SessionID: s.id, ExitCode: code})
}

// read posts each chunk of output until the output ends or is closed.
func (s *Session) read(ctx context.Context, child Child) {
	buf := make([]byte, 4096)
	for {
		n, err := child.Read(buf)
		if n > 0 {
			data := append([]byte(nil), buf[:n]...)
			s.post(ctx, event.ChildOutput{Header: event.Now(), SessionID: s.id, Data: data})
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) && ctx.Err() == nil {
				s.logger.Debug("shell read ended", zap.Error(err))
			}
			return
		}
	}
}

func (s *Session) post(ctx context.Context, ev event.Event) {
	s.mu.Lock()
	p := s.poster
	s.mu.Unlock()
	if p == nil {
		return
	}
	if err := p.Post(ctx, ev); err != nil && ctx.Err() == nil {
		s.logger.Debug("dropped shell event", zap.Error(err))
	}
}

// Write sends raw bytes to the shell's stdin.
func (s *Session) Write(p []byte) error {
	s.mu.Lock()
	child := s.child
	s.mu.Unlock()

	if child == nil {
		return ErrNotStarted
	}
	if !s.alive.Load() {
		return ErrSessionClosed
	}
	if _, err := child.Write(p); err != nil {
		return fmt.Errorf("write to shell: %w", err)
	}
	return nil
}

// Submit sends one command line. Surrounding whitespace is trimmed and a
// newline appended; an empty line sends just the newline.
func (s *Session) Submit(line string) error {
	return s.Write([]byte(SubmitText(line)))
}

// SubmitText returns the bytes Submit writes for line.
func SubmitText(line string) string {
	if text := strings.TrimSpace(line); text != "" {
		return text + "\n"
	}
	return "\n"
}

// Stop ends the session: it detaches the poster, cancels the drain,
// terminates the shell (SIGKILL after the kill timeout) and releases its
// handles. It is safe to call more than once and before Start.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.poster = nil
		child, cancel := s.child, s.cancel
		s.mu.Unlock()

		s.alive.Store(false)
		if cancel != nil {
			cancel()
		}
		if child == nil {
			return
		}

		child.Stop(s.killTimeout)
		if err := child.Close(); err != nil {
			s.logger.Debug("close shell handles", zap.Error(err))
		}
		s.wg.Wait()
		s.logger.Info("shell stopped")
	})
}
