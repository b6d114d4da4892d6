package shell

import (
	"errors"
	"fmt"
)

// Sentinel errors for shell sessions.
var (
	// ErrSessionClosed is returned when writing to a session whose process
	// has exited or that was stopped.
	ErrSessionClosed = errors.New("shell session closed")

	// ErrNotStarted is returned when writing before Start.
	ErrNotStarted = errors.New("shell session not started")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("shell session already started")
)

// ProcessSpawnError reports that the shell could not be launched.
type ProcessSpawnError struct {
	// Shell is the program that failed to start.
	Shell string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ProcessSpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Shell, e.Err)
}

// Unwrap returns the underlying error.
func (e *ProcessSpawnError) Unwrap() error {
	return e.Err
}
