// Package service holds the booking and order payment lifecycle.  Handlers
// call it with validated request values; it talks to the record store,
// the payment gateway and the notification sender through small interfaces.
package service

import (
	"errors"
	"fmt"
)

// Failure kinds.  Every error returned by this package wraps exactly one of
// them, so the HTTP layer can pick a status with errors.Is.
var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("not found")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrGateway          = errors.New("gateway error")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrUpload           = errors.New("upload error")
	ErrConflict         = errors.New("conflict")
)

// Error carries a human-readable message for the caller alongside its kind
// and the underlying cause, if any.
type Error struct {
	Kind  error
	Msg   string
	Cause error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func fail(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func wrap(kind error, cause error, msg string) error {
	return &Error{Kind: kind, Msg: msg, Cause: cause}
}

// Message returns the caller-facing text of err.  Errors that are not a
// service Error are internal and get a generic message.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal server error"
}
