// Package apperr defines the typed error kinds shared by the Store, Port
// Allocator, Slice Orchestrator, and Control API, and the HTTP status each
// kind maps to.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error for HTTP status mapping.
type Kind string

const (
	KindInvalidArgument     Kind = "invalid_argument"
	KindNotFound            Kind = "not_found"
	KindConflict            Kind = "conflict"
	KindExhaustedRange      Kind = "exhausted_range"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
	KindSliceNotRunning     Kind = "slice_not_running"
	KindInternal            Kind = "internal"
)

// Error is an application error carrying a Kind for status mapping.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// StatusCode maps the error's Kind to an HTTP status. KindConflict maps to
// 409; the Control API uses it for pie slug collisions only, and re-wraps
// the host/port/key conflicts of slice creation as KindInvalidArgument (400)
// with the original Store conflict as Err.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindInvalidArgument, KindExhaustedRange:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstreamUnavailable:
		return http.StatusBadGateway
	case KindSliceNotRunning:
		return http.StatusServiceUnavailable
	default:
		// KindInternal and anything unrecognized: spec §7's error table maps
		// Internal to 400 with message (logged), and §6's status-code list
		// (200,201,400,404,409,502,503) has no 500 at all.
		return http.StatusBadRequest
	}
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func InvalidArgument(format string, args ...any) *Error {
	return New(KindInvalidArgument, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

func ExhaustedRange(format string, args ...any) *Error {
	return New(KindExhaustedRange, fmt.Sprintf(format, args...))
}

func UpstreamUnavailable(format string, args ...any) *Error {
	return New(KindUpstreamUnavailable, fmt.Sprintf(format, args...))
}

func SliceNotRunning(format string, args ...any) *Error {
	return New(KindSliceNotRunning, fmt.Sprintf(format, args...))
}

func Internal(err error) *Error {
	return Wrap(KindInternal, "internal error", err)
}

// As is a thin wrapper over errors.As for *Error, used by the Control API's
// error-translation layer.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
