package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mcode/internal/event"
	"github.com/dshills/mcode/internal/integration/process"
)

// fakeChild is a shell whose output the test writes and whose input the
// test reads back.
type fakeChild struct {
	out  *io.PipeReader
	feed *io.PipeWriter

	mu    sync.Mutex
	input bytes.Buffer

	done     chan struct{}
	exitOnce sync.Once
	code     int
	stopped  int
	closed   int
}

func newFakeChild() *fakeChild {
	r, w := io.Pipe()
	return &fakeChild{out: r, feed: w, done: make(chan struct{})}
}

func (c *fakeChild) Read(p []byte) (int, error) { return c.out.Read(p) }

func (c *fakeChild) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input.Write(p)
}

func (c *fakeChild) Done() <-chan struct{} { return c.done }
func (c *fakeChild) ExitCode() int         { return c.code }

func (c *fakeChild) Stop(time.Duration) {
	c.mu.Lock()
	c.stopped++
	c.mu.Unlock()
	c.exit(-1)
}

func (c *fakeChild) Close() error {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
	return c.out.Close()
}

func (c *fakeChild) exit(code int) {
	c.exitOnce.Do(func() {
		c.code = code
		_ = c.feed.Close()
		close(c.done)
	})
}

func (c *fakeChild) written() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input.String()
}

type fakeSpawner struct {
	child *fakeChild
	err   error
	specs []Spec
}

func (s *fakeSpawner) Spawn(spec Spec) (Child, error) {
	s.specs = append(s.specs, spec)
	if s.err != nil {
		return nil, s.err
	}
	return s.child, nil
}

func startFake(t *testing.T) (*Session, *fakeChild, *event.Queue) {
	t.Helper()
	child := newFakeChild()
	q := event.NewQueue(64)
	s := NewSession(Options{
		Spec:    Spec{Shell: "/bin/fake"},
		Spawner: &fakeSpawner{child: child},
		Poster:  q,
	})
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(s.Stop)
	return s, child, q
}

func next(t *testing.T, q *event.Queue) event.Event {
	t.Helper()
	select {
	case ev := <-q.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an event")
		return nil
	}
}

func TestSessionForwardsOutput(t *testing.T) {
	s, child, q := startFake(t)
	assert.True(t, s.Alive())
	assert.NotEmpty(t, s.ID())

	go func() { _, _ = child.feed.Write([]byte("hello\n")) }()

	ev, ok := next(t, q).(event.ChildOutput)
	require.True(t, ok)
	assert.Equal(t, s.ID(), ev.SessionID)
	assert.Equal(t, "hello\n", string(ev.Data))
}

func TestSessionSubmit(t *testing.T) {
	s, child, _ := startFake(t)

	require.NoError(t, s.Submit("  ls  "))
	require.NoError(t, s.Submit(""))
	require.NoError(t, s.Submit(" \t"))
	assert.Equal(t, "ls\n\n\n", child.written())
}

func TestSubmitText(t *testing.T) {
	tests := map[string]string{
		"ls":          "ls\n",
		"":            "\n",
		"   ":         "\n",
		"  echo hi  ": "echo hi\n",
		"a b\n":       "a b\n",
	}
	for in, want := range tests {
		assert.Equal(t, want, SubmitText(in), "input %q", in)
	}
}

func TestSessionExit(t *testing.T) {
	s, child, q := startFake(t)

	child.exit(7)

	ev, ok := next(t, q).(event.ChildExited)
	require.True(t, ok)
	assert.Equal(t, 7, ev.ExitCode)
	assert.False(t, s.Alive())

	err := s.Submit("ls")
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Empty(t, child.written(), "nothing is written after exit")
}

func TestSessionStopIdempotent(t *testing.T) {
	s, child, _ := startFake(t)

	s.Stop()
	s.Stop()

	assert.False(t, s.Alive())
	assert.Equal(t, 1, child.stopped)
	assert.Equal(t, 1, child.closed)
	assert.ErrorIs(t, s.Submit("ls"), ErrSessionClosed)
}

func TestSessionStopBeforeStart(t *testing.T) {
	s := NewSession(Options{Spawner: &fakeSpawner{}})
	assert.NotPanics(t, s.Stop)
	assert.ErrorIs(t, s.Submit("ls"), ErrNotStarted)
}

func TestSessionSpawnError(t *testing.T) {
	cause := errors.New("no such file")
	s := NewSession(Options{
		Spec:    Spec{Shell: "/nope"},
		Spawner: &fakeSpawner{err: cause},
	})

	err := s.Start(context.Background())
	var spawnErr *ProcessSpawnError
	require.ErrorAs(t, err, &spawnErr)
	assert.Equal(t, "/nope", spawnErr.Shell)
	assert.ErrorIs(t, err, cause)
	assert.False(t, s.Alive())

	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)
}

func TestSessionDefaultShell(t *testing.T) {
	t.Setenv("SHELL", "/bin/zsh")
	sp := &fakeSpawner{child: newFakeChild()}
	s := NewSession(Options{Spawner: sp})
	defer s.Stop()

	require.NoError(t, s.Start(context.Background()))
	assert.Equal(t, "/bin/zsh", sp.specs[0].Shell)
}

func TestSessionWithRealShell(t *testing.T) {
	sup := process.NewSupervisor()
	defer sup.Shutdown(time.Second)

	q := event.NewQueue(64)
	s := NewSession(Options{
		Spec:    Spec{Shell: "/bin/sh"},
		Spawner: PipeSpawner{Supervisor: sup},
		Poster:  q,
	})
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.NoError(t, s.Submit("echo out; echo err 1>&2"))
	require.NoError(t, s.Submit("exit 3"))

	var out strings.Builder
	for {
		switch ev := next(t, q).(type) {
		case event.ChildOutput:
			out.Write(ev.Data)
			continue
		case event.ChildExited:
			assert.Equal(t, 3, ev.ExitCode)
		}
		break
	}
	assert.Equal(t, "out\nerr\n", out.String())
	assert.False(t, s.Alive())
}

func TestSessionExitWithBackgroundJob(t *testing.T) {
	sup := process.NewSupervisor()
	defer sup.Shutdown(time.Second)

	q := event.NewQueue(64)
	s := NewSession(Options{
		Spec:    Spec{Shell: "/bin/sh"},
		Spawner: PipeSpawner{Supervisor: sup},
		Poster:  q,
	})
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	// The sleeper inherits the output pipe and outlives the shell.
	require.NoError(t, s.Submit("sleep 5 &"))
	require.NoError(t, s.Submit("echo bye; exit 2"))

	start := time.Now()
	var out strings.Builder
	var exited *event.ChildExited
	for exited == nil {
		switch ev := next(t, q).(type) {
		case event.ChildOutput:
			out.Write(ev.Data)
		case event.ChildExited:
			exited = &ev
		}
	}
	assert.Less(t, time.Since(start), 3*time.Second, "exit is reported before the background job ends")
	assert.Equal(t, 2, exited.ExitCode)
	assert.Equal(t, "bye\n", out.String())
	assert.False(t, s.Alive())

	assert.ErrorIs(t, s.Submit("ls"), ErrSessionClosed)
}

func TestSessionMarkedDeadBeforeOutputEnds(t *testing.T) {
	s, child, q := startFake(t)

	// The process exits but its output stays open.
	child.exitOnce.Do(func() {
		child.code = 1
		close(child.done)
	})

	ev, ok := next(t, q).(event.ChildExited)
	require.True(t, ok)
	assert.Equal(t, 1, ev.ExitCode)
	assert.False(t, s.Alive())
	assert.Equal(t, 1, child.closed, "the open output is closed after the grace period")

	assert.ErrorIs(t, s.Submit("ls"), ErrSessionClosed)
	assert.Empty(t, child.written())
}
