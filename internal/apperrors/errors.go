// Package apperrors defines the error taxonomy shared by services and handlers.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind classifies a failure for the HTTP surface
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindAuth
	KindForbidden
	KindNotFound
	KindExpired
	KindAlreadyVerified
	KindRateLimited
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "Validation error"
	case KindConflict:
		return "Conflict"
	case KindAuth:
		return "Unauthorized"
	case KindForbidden:
		return "Forbidden"
	case KindNotFound:
		return "Not found"
	case KindExpired:
		return "Expired"
	case KindAlreadyVerified:
		return "Already verified"
	case KindRateLimited:
		return "Too many requests"
	case KindUpstream:
		return "Upstream error"
	default:
		return "Internal server error"
	}
}

// StatusCode maps the kind onto an HTTP status
func (k Kind) StatusCode() int {
	switch k {
	case KindValidation, KindExpired, KindAlreadyVerified:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified application error
type Error struct {
	Kind    Kind
	Message string
	Err     error

	// RetryAfter is set for KindRateLimited
	RetryAfter time.Duration
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

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func Validation(format string, args ...any) *Error {
	return newError(KindValidation, nil, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, nil, format, args...)
}

func Auth(format string, args ...any) *Error {
	return newError(KindAuth, nil, format, args...)
}

func Forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, nil, format, args...)
}

func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, nil, format, args...)
}

func Expired(format string, args ...any) *Error {
	return newError(KindExpired, nil, format, args...)
}

func AlreadyVerified(format string, args ...any) *Error {
	return newError(KindAlreadyVerified, nil, format, args...)
}

// RateLimited reports a cooldown; wait is rounded up to whole seconds by callers
func RateLimited(wait time.Duration, format string, args ...any) *Error {
	e := newError(KindRateLimited, nil, format, args...)
	e.RetryAfter = wait
	return e
}

func Upstream(err error, format string, args ...any) *Error {
	return newError(KindUpstream, err, format, args...)
}

func Internal(err error, format string, args ...any) *Error {
	return newError(KindInternal, err, format, args...)
}

// KindOf returns the kind of err, KindInternal for unclassified errors
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
