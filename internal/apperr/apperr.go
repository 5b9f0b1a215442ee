// Package apperr defines the error kinds every operation reports.
// Each kind is a sentinel; constructors wrap it with context so callers can
// match with errors.Is.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrNotAuthorized      = errors.New("not authorized")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvariantViolation = errors.New("invariant violation")
)

// NotFound wraps ErrNotFound.
func NotFound(format string, args ...any) error {
	return wrap(ErrNotFound, format, args...)
}

// NotAuthorized wraps ErrNotAuthorized.
func NotAuthorized(format string, args ...any) error {
	return wrap(ErrNotAuthorized, format, args...)
}

// InvalidTransition wraps ErrInvalidTransition.
func InvalidTransition(format string, args ...any) error {
	return wrap(ErrInvalidTransition, format, args...)
}

// InvalidInput wraps ErrInvalidInput.
func InvalidInput(format string, args ...any) error {
	return wrap(ErrInvalidInput, format, args...)
}

// InvariantViolation wraps ErrInvariantViolation.
func InvariantViolation(format string, args ...any) error {
	return wrap(ErrInvariantViolation, format, args...)
}

func wrap(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))
}

// Kind returns the short name of the error kind, or "internal" for errors
// that carry none.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrInvariantViolation):
		return "invariant_violation"
	default:
		return "internal"
	}
}
