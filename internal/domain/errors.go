package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a referenced id is absent.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the actor lacks the required role.
	ErrForbidden = errors.New("forbidden: admin access required")
	// ErrUnauthorized is returned when no valid actor could be resolved.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrConfirmationRequired guards irreversible deletes.
	ErrConfirmationRequired = errors.New("destructive operation requires explicit confirmation")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError is a shorthand for &ValidationError{...}.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// RemoteError wraps a failed call to the backing store. Its message is the
// store's raw message so callers can surface it verbatim.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return e.Err.Error()
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Remote wraps err as a RemoteError unless it already carries a taxonomy error.
func Remote(op string, err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	var re *RemoteError
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) || errors.As(err, &ve) || errors.As(err, &re) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}

// NotFound returns an ErrNotFound wrapped with the entity and id.
func NotFound(entity string, id fmt.Stringer) error {
	return fmt.Errorf("%s with ID %s %w", entity, id, ErrNotFound)
}
