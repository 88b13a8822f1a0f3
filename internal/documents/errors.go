package documents

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no document matches the ID.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidInput marks client mistakes: missing file, bad type, short text.
	ErrInvalidInput = errors.New("invalid input")
)

// InputError carries a user-facing validation message and matches ErrInvalidInput.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func (e *InputError) Unwrap() error { return ErrInvalidInput }

func invalid(format string, args ...any) error {
	return &InputError{Message: fmt.Sprintf(format, args...)}
}
