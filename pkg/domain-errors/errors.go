// Package domainerrors is the error taxonomy shared by services and transports.
//
// Services return *Error values; transports map Code to a status and surface
// Reason so client tooling can tell causes apart (for example an expired
// receipt from a receipt that was already used).
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport mapping.
type Code string

const (
	CodeInternal           Code = "internal_error"
	CodeInvariantViolation Code = "invariant_violation"
	CodeValidation         Code = "validation_error"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidInput       Code = "invalid_input"
	CodeUnauthorized       Code = "unauthorized"
	CodeForbidden          Code = "forbidden"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeTimeout            Code = "timeout"

	// Voter weight taxonomy.
	CodeIdentityMismatch Code = "identity_mismatch"
	CodeDuplicateUse     Code = "duplicate_use"
	CodeExpired          Code = "expired"
	CodeCapacityExceeded Code = "capacity_exceeded"
	CodeOverflow         Code = "arithmetic_overflow"
)

// Error is a domain error. Reason is a stable identifier for catalogue
// errors created with Define and is empty for ad-hoc errors.
type Error struct {
	Code    Code
	Reason  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is a catalogue error with the same Reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Reason == "" {
		return false
	}
	return e.Reason == t.Reason
}

// New creates an error with the given code and message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap annotates err with a code and message, keeping err in the chain.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// Define declares a catalogue error. Catalogue errors are package-level
// values compared with errors.Is.
func Define(code Code, reason, msg string) *Error {
	return &Error{Code: code, Reason: reason, Message: msg}
}

// WithCause returns a copy of a catalogue error carrying cause. The copy
// still matches the catalogue value under errors.Is.
func (e *Error) WithCause(cause error) *Error {
	out := *e
	out.Err = cause
	return &out
}

// HasCode reports whether the outermost *Error in err's chain has code.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// Is is shorthand for HasCode.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the code of err, or CodeInternal for foreign errors.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ReasonOf returns the first non-empty Reason in err's chain.
func ReasonOf(err error) string {
	for err != nil {
		if de, ok := err.(*Error); ok && de.Reason != "" {
			return de.Reason
		}
		err = errors.Unwrap(err)
	}
	return ""
}
