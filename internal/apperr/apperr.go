// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindValidation      Kind = "validation"
	KindForbidden       Kind = "forbidden"
	KindConflict        Kind = "conflict"
	KindNotFound        Kind = "not_found"
	KindStorage         Kind = "storage"
)

// Error is a classified failure scoped to a single operation
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Field   string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in the chain, or "" if none
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return ""
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Unauthenticated reports an action that requires a signed-in user
func Unauthenticated(op string) *Error {
	return &Error{Kind: KindUnauthenticated, Op: op, Message: "sign in required"}
}

// Validation reports an empty or malformed required field
func Validation(op, field, message string) *Error {
	return &Error{Kind: KindValidation, Op: op, Field: field, Message: message}
}

// Forbidden reports an actor lacking ownership or role for the action
func Forbidden(op, message string) *Error {
	return &Error{Kind: KindForbidden, Op: op, Message: message}
}

// Conflict reports a uniqueness or state conflict
func Conflict(op, message string) *Error {
	return &Error{Kind: KindConflict, Op: op, Message: message}
}

// NotFound reports a missing or invisible record
func NotFound(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

// Storage wraps an opaque gateway failure
func Storage(op string, err error) *Error {
	return &Error{Kind: KindStorage, Op: op, Message: "storage failure", Err: err}
}

// Wrap classifies err as a storage failure unless it is already classified
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != "" {
		return err
	}
	return Storage(op, err)
}

// Errorf builds a storage failure with a formatted cause
func Errorf(op, format string, args ...interface{}) *Error {
	return Storage(op, fmt.Errorf(format, args...))
}
