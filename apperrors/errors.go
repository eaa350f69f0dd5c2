// Package apperrors defines the error taxonomy shared by controllers,
// the lifecycle engine and the central HTTP error handler.
package apperrors

import (
	"errors"
	"fmt"
)

type Kind int

const (
	// Validation covers malformed or rejected input.
	Validation Kind = iota
	// NotFound covers unknown ids, including cross-tenant access.
	NotFound
	// Forbidden covers insufficient caller roles.
	Forbidden
	// InvalidTransition covers state machine violations, including
	// attempts on already-converted documents.
	InvalidTransition
	// Upstream covers automation engine call failures.
	Upstream
	// Internal covers persistence and unexpected failures.
	Internal
)

// Error carries a taxonomy kind plus a caller-safe message. The
// wrapped cause, if any, is for logs only and never reaches clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to an internal error without exposing it.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the taxonomy kind; non-taxonomy errors are Internal.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// Is lets errors.Is match on kind sentinels created with New.
func (e *Error) Is(target error) bool {
	var ae *Error
	if errors.As(target, &ae) {
		return e.Kind == ae.Kind
	}
	return false
}
