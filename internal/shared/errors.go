package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput reports a name or quantity that cannot become a list entry.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPersistence matches every *PersistenceError via errors.Is.
	ErrPersistence = errors.New("persistence failure")
)

// PersistenceError is returned when a call through the persistence boundary
// fails. Message is safe to show to the user; Err is the original cause.
type PersistenceError struct {
	Op      string
	Message string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Is reports ErrPersistence as a match so callers need not know the type.
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

// UserMessage returns the message to display for err, or "" when err carries none.
func UserMessage(err error) string {
	var pe *PersistenceError
	if errors.As(err, &pe) {
		return pe.Message
	}
	return ""
}
