package core

// errors.go defines the error taxonomy shared by the service and its callers.
//
// Every error returned from Service carries a Kind. Transport layers map the
// Kind to a status code and use MapError for the client-facing text; the
// wrapped cause is only ever logged.

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies an error for the caller.
type Kind int

const (
	KindInternal Kind = iota
	KindMissingParameter
	KindValidation
	KindNotFound
	KindConflict
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindMissingParameter:
		return "missing_parameter"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Store-level sentinels.
var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("version conflict")
)

// Error is a classified service error.
type Error struct {
	Kind    Kind
	Op      string // operation, e.g. "save grid"
	Message string // safe to show to clients
	Err     error  // underlying cause, never shown to clients
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return KindInternal
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrVersionConflict):
		return KindConflict
	case errors.Is(err, ErrTooManyTranscodes):
		return KindUnavailable
	}
	return KindInternal
}

func missingParameter(op, name string) error {
	return &Error{Kind: KindMissingParameter, Op: op, Message: name + " is required"}
}

func invalid(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf(format, args...)}
}

func notFound(op, format string, args ...any) error {
	return &Error{Kind: KindNotFound, Op: op, Message: fmt.Sprintf(format, args...)}
}

// internal wraps a store or codec failure. Sentinels from the store keep
// their own kind so a conflict or a missing sheet is not reported as a 500.
func internal(op, message string, err error) error {
	kind := KindOf(err)
	switch kind {
	case KindNotFound:
		message = "sheet not found"
	case KindConflict:
		message = "sheet was modified since it was loaded"
	case KindUnavailable:
		message = "too many spreadsheet conversions in progress"
	}
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}
