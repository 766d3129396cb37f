// Package apperr defines the stable error kinds surfaced by the compliance engine.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies a class of failure that callers can branch on
type Kind string

// Error kinds
const (
	InvalidPeriod          Kind = "InvalidPeriod"
	UnknownJurisdiction    Kind = "UnknownJurisdiction"
	JurisdictionalDeadline Kind = "JurisdictionalDeadline"
	AlreadyDecided         Kind = "AlreadyDecided"
	OverlappingDelay       Kind = "OverlappingDelay"
	SlotUnavailable        Kind = "SlotUnavailable"
	NotFound               Kind = "NotFound"
	StorageFailure         Kind = "StorageFailure"
	InvalidRequest         Kind = "InvalidRequest"
	AlreadyExists          Kind = "AlreadyExists"
	ScheduleConflict       Kind = "ScheduleConflict"
)

// Error carries a Kind, a human readable message and an optional cause
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an Error of the given kind
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error of the given kind wrapping err
func Wrap(kind Kind, err error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the Kind of the first *Error in err's chain. Errors that
// were never classified are reported as StorageFailure so nothing leaks out
// as a client error by accident.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return StorageFailure
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
