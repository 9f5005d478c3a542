package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind classifies an application error.
type Kind string

const (
	KindNotFound       Kind = "not_found"
	KindValidation     Kind = "validation"
	KindRequestFailure Kind = "request_failure"
	KindUnauthorized   Kind = "unauthorized"
)

// Error is the application error type carried through the façades.
type Error struct {
	Kind    Kind
	Message string            // Human readable, safe to show
	Fields  map[string]string // Per-field messages for validation errors
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+e.Fields[k])
		}
		return e.Message + " (" + strings.Join(parts, ", ") + ")"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

// NotFound reports a missing entity.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized reports a missing or invalid admin session.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

// RequestFailure wraps a storage or asset backend failure.
func RequestFailure(message string, cause error) *Error {
	return &Error{Kind: KindRequestFailure, Message: message, Cause: cause}
}

// Validation builds a validation error from per-field messages.
// It returns nil when fields is empty so callers can write
// `if err := apperr.Validation(v); err != nil`.
func Validation(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &Error{Kind: KindValidation, Message: "invalid input", Fields: fields}
}

// Invalid is a single-field validation error.
func Invalid(field, message string) *Error {
	return &Error{Kind: KindValidation, Message: "invalid input", Fields: map[string]string{field: message}}
}

// KindOf returns the kind of the first *Error in err's chain.
// Unclassified errors count as request failures.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindRequestFailure
}

// FieldsOf returns validation messages carried by err, if any.
func FieldsOf(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

// HTTPStatus maps err to the status code the web layer answers with.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case "":
		return http.StatusOK
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusBadGateway
	}
}
