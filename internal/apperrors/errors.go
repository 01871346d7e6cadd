// Package apperrors classifies failures into the small set of kinds the
// pages and API surface to users.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is the user-facing category of a failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotSignedIn
	KindPermissionDenied
	KindUnavailable
	KindValidation
	KindWriteFailed
	KindNotFound
	KindConflict
	KindConfirmationRequired
)

func (k Kind) String() string {
	switch k {
	case KindNotSignedIn:
		return "not_signed_in"
	case KindPermissionDenied:
		return "permission_denied"
	case KindUnavailable:
		return "unavailable"
	case KindValidation:
		return "validation"
	case KindWriteFailed:
		return "write_failed"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindConfirmationRequired:
		return "confirmation_required"
	default:
		return "unknown"
	}
}

// Sentinels usable with errors.Is.
var (
	ErrNotSignedIn          = &Error{Kind: KindNotSignedIn}
	ErrPermissionDenied     = &Error{Kind: KindPermissionDenied}
	ErrUnavailable          = &Error{Kind: KindUnavailable}
	ErrValidation           = &Error{Kind: KindValidation}
	ErrWriteFailed          = &Error{Kind: KindWriteFailed}
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrConflict             = &Error{Kind: KindConflict}
	ErrConfirmationRequired = &Error{Kind: KindConfirmationRequired}
)

// Error is a classified failure. Field names the offending form input for
// validation errors; Message is safe to show to the user.
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.String()
	}
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the package sentinels work
// with errors.Is regardless of field or message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// New returns an error of the given kind wrapping cause.
func New(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Err: cause}
}

// Validation returns a field-specific validation error.
func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

// WithMessage returns a copy of err classified as kind and carrying message.
func WithMessage(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindUnknown
}

// Classify is KindOf with a fallback on the error text, for driver errors
// that reach the pages without having been translated.
func Classify(err error) Kind {
	if kind := KindOf(err); kind != KindUnknown || err == nil {
		return kind
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission") || strings.Contains(msg, "insufficient permissions"):
		return KindPermissionDenied
	case strings.Contains(msg, "unavailable"):
		return KindUnavailable
	default:
		return KindUnknown
	}
}

// FieldOf returns the offending field of a validation error, or "".
func FieldOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}

// MessageOf returns the user-facing message carried by err, if any.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ""
}
