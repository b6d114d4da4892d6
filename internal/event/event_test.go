package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mcode/internal/renderer/backend"
)

type recorder struct {
	name    string
	claim   bool
	log     *[]string
	outputs []string
	exits   []int
}

func (r *recorder) HandleKey(ev Key) bool {
	*r.log = append(*r.log, r.name+":key")
	return r.claim
}

func (r *recorder) HandleResize(ev Resize) {
	*r.log = append(*r.log, r.name+":resize")
}

func (r *recorder) HandleChildOutput(ev ChildOutput) {
	r.outputs = append(r.outputs, string(ev.Data))
}

func (r *recorder) HandleChildExited(ev ChildExited) {
	r.exits = append(r.exits, ev.ExitCode)
}

type panicker struct{}

func (panicker) HandleKey(Key) bool { panic("boom") }

func TestDispatcherRoutesByCapability(t *testing.T) {
	var log []string
	first := &recorder{name: "a", log: &log}
	second := &recorder{name: "b", claim: true, log: &log}
	third := &recorder{name: "c", log: &log}

	d := NewDispatcher()
	require.NoError(t, d.Register(first))
	require.NoError(t, d.Register(second))
	require.NoError(t, d.Register(third))

	assert.True(t, d.Dispatch(Key{Header: Now(), Key: backend.KeyEnter}))
	assert.Equal(t, []string{"a:key", "b:key"}, log, "claimed keys stop propagating")

	log = nil
	assert.True(t, d.Dispatch(Resize{Header: Now(), Width: 80, Height: 24}))
	assert.Equal(t, []string{"a:resize", "b:resize", "c:resize"}, log)

	d.Dispatch(ChildOutput{Header: Now(), Data: []byte("hi")})
	d.Dispatch(ChildExited{Header: Now(), ExitCode: 3})
	assert.Equal(t, []string{"hi"}, first.outputs)
	assert.Equal(t, []int{3}, third.exits)

	assert.False(t, d.Dispatch(Geometry{Header: Now(), GutterWidth: 4}))
}

func TestDispatcherRegisterErrors(t *testing.T) {
	d := NewDispatcher()
	assert.ErrorIs(t, d.Register(nil), ErrNilHandler)
	assert.ErrorIs(t, d.Register(struct{}{}), ErrNoCapability)
}

func TestDispatcherRecoversPanics(t *testing.T) {
	var got *PanicError
	var log []string
	d := NewDispatcher(WithPanicHandler(func(p *PanicError) { got = p }))
	require.NoError(t, d.Register(panicker{}))
	require.NoError(t, d.Register(&recorder{name: "after", claim: true, log: &log}))

	assert.NotPanics(t, func() {
		assert.True(t, d.Dispatch(Key{Header: Now()}))
	})
	require.NotNil(t, got)
	assert.True(t, errors.Is(got, ErrHandlerPanic))
	assert.Equal(t, "boom", got.Value)
	assert.NotEmpty(t, got.Stack)
	assert.Equal(t, []string{"after:key"}, log)
}

func TestQueue(t *testing.T) {
	q := NewQueue(2)
	ctx := context.Background()

	require.NoError(t, q.Post(ctx, Resize{Header: Now()}))
	assert.True(t, q.TryPost(Key{Header: Now()}))
	assert.False(t, q.TryPost(Key{Header: Now()}), "queue is full")
	assert.Equal(t, 2, q.Len())

	ev := <-q.Events()
	_, ok := ev.(Resize)
	assert.True(t, ok, "events come out in order")

	blocked := make(chan error, 1)
	require.NoError(t, q.Post(ctx, Key{Header: Now()}))
	go func() { blocked <- q.Post(ctx, Key{Header: Now()}) }()

	select {
	case <-blocked:
		t.Fatal("post on a full queue should block")
	case <-time.After(20 * time.Millisecond):
	}

	q.Close()
	select {
	case err := <-blocked:
		assert.ErrorIs(t, err, ErrQueueClosed)
	case <-time.After(time.Second):
		t.Fatal("close did not release the blocked poster")
	}

	assert.ErrorIs(t, q.Post(ctx, Key{}), ErrQueueClosed)
	assert.False(t, q.TryPost(Key{}))
	q.Close()
}

func TestQueuePostHonorsContext(t *testing.T) {
	q := NewQueue(1)
	require.True(t, q.TryPost(Key{}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Post(ctx, Key{}), context.DeadlineExceeded)
}

func TestFromBackend(t *testing.T) {
	tests := []struct {
		name string
		in   backend.Event
		want any
	}{
		{"key", backend.Event{Type: backend.EventKey, Key: backend.KeyRune, Rune: 'x'}, Key{}},
		{"resize", backend.Event{Type: backend.EventResize, Width: 10, Height: 5}, Resize{}},
		{"wheel", backend.Event{Type: backend.EventMouse, MouseButton: backend.MouseWheelDown}, Scroll{}},
		{"click", backend.Event{Type: backend.EventMouse, MouseButton: backend.MouseLeft}, Mouse{}},
		{"release", backend.Event{Type: backend.EventMouse, MouseButton: backend.MouseNone}, nil},
		{"interrupt", backend.Event{Type: backend.EventInterrupt}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromBackend(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.IsType(t, tt.want, got)
			assert.False(t, got.When().IsZero())
		})
	}

	wheel := FromBackend(backend.Event{Type: backend.EventMouse, MouseButton: backend.MouseWheelUp}).(Scroll)
	assert.Equal(t, -3, wheel.Delta)
}
