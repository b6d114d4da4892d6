package event

import (
	"context"
	"sync"
)

// Queue is the thread-safe channel that feeds the single event loop.
// Any goroutine may post; only the loop receives.
type Queue struct {
	ch     chan Event
	done   chan struct{}
	once   sync.Once
	closed bool
	mu     sync.RWMutex
}

// NewQueue creates a queue holding up to size pending events.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 256
	}
	return &Queue{
		ch:   make(chan Event, size),
		done: make(chan struct{}),
	}
}

// Post enqueues ev, blocking while the queue is full. It returns
// ErrQueueClosed once the queue is closed, or the context error.
func (q *Queue) Post(ctx context.Context, ev Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.ch <- ev:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// TryPost enqueues ev without blocking and reports whether it was queued.
func (q *Queue) TryPost(ev Event) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return false
	}

	select {
	case q.ch <- ev:
		return true
	default:
		return false
	}
}

// Events returns the receive side of the queue.
func (q *Queue) Events() <-chan Event {
	return q.ch
}

// Done is closed when the queue closes.
func (q *Queue) Done() <-chan struct{} {
	return q.done
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return len(q.ch)
}

// Close stops accepting events. Blocked posters return ErrQueueClosed.
// Pending events stay readable. Close is idempotent.
func (q *Queue) Close() {
	q.once.Do(func() {
		close(q.done)
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
	})
}
