package jsondb

import (
	"errors"
	"fmt"
)

// Error codes are stable and intended for programmatic matching across
// process boundaries (they appear in HTTP error bodies as well).
const (
	CodeGeneral   = 1000
	CodePath      = 1001
	CodeFile      = 1002
	CodeData      = 1003
	CodeLookUp    = 1004
	CodeInsertion = 1005
)

// Kind identifies a category of database error. The exported sentinels
// below are the only instances; match them with errors.Is.
type Kind struct {
	name string
	code int
}

var (
	// ErrPath is returned when the database path is not a .json file or
	// the file cannot be created or opened at construction.
	ErrPath = &Kind{"PathError", CodePath}

	// ErrFile is returned on any I/O or parse failure during Load or Save.
	ErrFile = &Kind{"FileError", CodeFile}

	// ErrData is returned when a loaded file fails structural validation,
	// or when a delete target does not exist.
	ErrData = &Kind{"DataError", CodeData}

	// ErrLookUp is returned when a referenced collection, item, or key
	// does not exist.
	ErrLookUp = &Kind{"LookUpError", CodeLookUp}

	// ErrInsertion is returned when a write target name is invalid or
	// already exists.
	ErrInsertion = &Kind{"InsertionError", CodeInsertion}
)

// Error makes a bare Kind usable as an error; its message is the kind name.
func (k *Kind) Error() string {
	return fmt.Sprintf("%s [Error Code: %d]", k.name, k.code)
}

// Code returns the kind's stable numeric code.
func (k *Kind) Code() int { return k.code }

// Name returns the kind's name, e.g. "LookUpError".
func (k *Kind) Name() string { return k.name }

// Error is the concrete error type returned by all DB operations. It
// carries a kind, a human-readable message, and optionally a wrapped cause.
type Error struct {
	Kind    *Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s [Error Code: %d]", e.Message, e.Kind.code)
}

// Is reports whether target is this error's kind, so that
// errors.Is(err, jsondb.ErrLookUp) matches.
func (e *Error) Is(target error) bool {
	return target == error(e.Kind)
}

// Unwrap exposes the underlying cause, if any.
func (e *Error) Unwrap() error { return e.cause }

// Code returns the numeric code of the error's kind.
func (e *Error) Code() int { return e.Kind.code }

// newError builds an Error of the given kind. An empty format falls back
// to the kind name as the message.
func newError(kind *Kind, cause error, format string, args ...any) *Error {
	msg := kind.name
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Message: msg, cause: cause}
}

// ErrorCode extracts the stable numeric code from err, unwrapping as
// needed. Unknown errors map to CodeGeneral.
func ErrorCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code()
	}
	var k *Kind
	if errors.As(err, &k) {
		return k.code
	}
	return CodeGeneral
}
