// Package apperr provides the standardized error taxonomy surfaced at the
// HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies an error for status-code mapping and logging.
type Kind string

const (
	KindValidation   Kind = "VALIDATION_ERROR"
	KindNotFound     Kind = "NOT_FOUND"
	KindConflict     Kind = "CONFLICT"
	KindPrecondition Kind = "PRECONDITION_FAILED"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindIO           Kind = "IO_ERROR"
	KindInternal     Kind = "INTERNAL_ERROR"
)

// Error represents a structured application error.
type Error struct {
	Kind      Kind                   `json:"kind"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	cause     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is allows errors.Is matching on kind via sentinel errors.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func newError(kind Kind, message, details string) *Error {
	return &Error{
		Kind:      kind,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
	}
}

func Validation(message, details string) *Error {
	return newError(KindValidation, message, details)
}

func NotFound(resource, id string) *Error {
	return newError(KindNotFound, fmt.Sprintf("%s not found", resource), fmt.Sprintf("id: %s", id))
}

func Conflict(message, details string) *Error {
	return newError(KindConflict, message, details)
}

func Precondition(message, details string) *Error {
	return newError(KindPrecondition, message, details)
}

func Unauthorized(details string) *Error {
	return newError(KindUnauthorized, "authentication required", details)
}

func Forbidden(resource, action string) *Error {
	return newError(KindForbidden, "insufficient permissions",
		fmt.Sprintf("resource: %s, action: %s", resource, action))
}

func IO(service string, err error) *Error {
	e := newError(KindIO, fmt.Sprintf("external service '%s' error", service), err.Error())
	e.cause = err
	return e
}

func Internal(err error) *Error {
	e := newError(KindInternal, "unexpected error", err.Error())
	e.cause = err
	return e
}

// KindOf extracts the Kind from any error, defaulting to KindInternal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps an error kind to the HTTP status code surfaced to clients.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindPrecondition:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindIO:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
