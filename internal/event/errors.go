package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for event delivery.
var (
	// ErrQueueClosed is returned when posting to a closed queue.
	ErrQueueClosed = errors.New("event queue is closed")

	// ErrHandlerPanic is matched by PanicError.
	ErrHandlerPanic = errors.New("handler panicked")

	// ErrNilHandler is returned when a nil component is registered.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrNoCapability is returned when a registered component handles no
	// event type.
	ErrNoCapability = errors.New("component handles no events")
)

// PanicError wraps a panic value raised by a handler.
type PanicError struct {
	// Event is the event being delivered.
	Event Event

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panic on %T: %v", e.Event, e.Value)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
