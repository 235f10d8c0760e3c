package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an application error for transport mapping.
type Kind int

const (
	KindInvalid Kind = iota + 1
	KindNotFound
	KindForbidden
	KindConflict
	KindInternal
)

// Error is a typed business error carrying a classification and a
// user-facing message.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// HTTPStatus maps the error kind to an HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindInvalid:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func Invalid(msg string) *Error   { return &Error{Kind: KindInvalid, Message: msg} }
func NotFound(msg string) *Error  { return &Error{Kind: KindNotFound, Message: msg} }
func Forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Message: msg} }
func Conflict(msg string) *Error  { return &Error{Kind: KindConflict, Message: msg} }

// Internal wraps an unexpected error without leaking its detail to callers.
func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, cause: cause}
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// Status returns the HTTP status for any error, defaulting to 500 for
// errors that are not application errors.
func Status(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	return http.StatusInternalServerError
}
