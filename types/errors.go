package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies failures so callers can branch without string matching.
type ErrorKind string

const (
	NotFound          ErrorKind = "not_found"
	InvalidTransition ErrorKind = "invalid_transition"
	ValidationError   ErrorKind = "validation_error"
	ConflictRetry     ErrorKind = "conflict_retry"
)

// Error is the structured failure returned by the store and the workflow.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound          = &Error{Kind: NotFound}
	ErrInvalidTransition = &Error{Kind: InvalidTransition}
	ErrValidation        = &Error{Kind: ValidationError}
	ErrConflictRetry     = &Error{Kind: ConflictRetry}
)

func NewNotFound(kind, id string) *Error {
	return &Error{Kind: NotFound, Message: fmt.Sprintf("%s %s not found", kind, id)}
}

func NewInvalidTransition(kind, from, to string) *Error {
	return &Error{Kind: InvalidTransition, Message: fmt.Sprintf("%s cannot move from %s to %s", kind, from, to)}
}

func NewValidation(format string, args ...any) *Error {
	return &Error{Kind: ValidationError, Message: fmt.Sprintf(format, args...)}
}

func NewConflictRetry(kind, id string) *Error {
	return &Error{Kind: ConflictRetry, Message: fmt.Sprintf("%s %s was modified concurrently, retry", kind, id)}
}

// KindOf returns the kind of the first *Error in the chain, or "" when err is
// not one of ours.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf returns the human readable part of a structured error.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status code the API answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case NotFound:
		return http.StatusNotFound
	case InvalidTransition:
		return http.StatusUnprocessableEntity
	case ValidationError:
		return http.StatusBadRequest
	case ConflictRetry:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
