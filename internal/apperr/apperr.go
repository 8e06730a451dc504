// Package apperr defines the structured error type shared by the admission
// workflow, its stores and the HTTP layer.
package apperr

import (
	"errors"
	"strings"

	"github.com/Shivanand-hulikatti/event-registration/internal/model"
)

// Code is a machine-readable error code.
type Code string

const (
	// CodeValidation marks bad input. No capacity is consumed.
	CodeValidation Code = "VALIDATION_ERROR"
	// CodeUnknownEvent marks a missing or disabled event.
	CodeUnknownEvent Code = "UNKNOWN_EVENT"
	// CodeEventFull marks an event whose capacity is exhausted.
	CodeEventFull Code = "EVENT_FULL"
	// CodeConflict is raised by a store when an append would race past
	// capacity. It never leaves the admission controller.
	CodeConflict Code = "CONFLICT"
	// CodeDuplicate is raised by a store when the email is already on the roster.
	CodeDuplicate Code = "DUPLICATE"
	// CodeNotificationFailure is logged only.
	CodeNotificationFailure Code = "NOTIFICATION_FAILURE"
	// CodeInternal covers everything else.
	CodeInternal Code = "INTERNAL"
)

// UserVisible reports whether errors with this code may be shown to a registrant.
func (c Code) UserVisible() bool {
	switch c {
	case CodeValidation, CodeUnknownEvent, CodeEventFull:
		return true
	default:
		return false
	}
}

// Sentinels for errors.Is comparisons. Matching is by code only.
var (
	ErrValidation   = New(CodeValidation, "validation failed")
	ErrUnknownEvent = New(CodeUnknownEvent, "event not found")
	ErrEventFull    = New(CodeEventFull, "event is fully booked")
	ErrConflict     = New(CodeConflict, "registration conflicts with a concurrent write")
	ErrDuplicate    = New(CodeDuplicate, "email already registered for this event")
)

// Error is the domain error type with structured metadata.
type Error struct {
	Code    Code
	Message string
	Fields  []model.FieldError
	Cause   error
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Reason)
	}
	return e.Message + ": " + strings.Join(parts, "; ")
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Validation creates a validation error listing the offending fields.
func Validation(fields ...model.FieldError) *Error {
	return &Error{Code: CodeValidation, Message: "validation failed", Fields: fields}
}

// CodeOf returns the code of the first *Error in err's chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
