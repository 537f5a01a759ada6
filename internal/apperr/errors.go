// Package apperr defines the error taxonomy shared by every layer.
//
// The Notion and Telegram clients translate their raw HTTP failures into one
// of these kinds at the boundary; handlers map kinds to HTTP statuses. Nothing
// above the client layer ever inspects a raw response body.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

type Kind string

const (
	KindValidation   Kind = "VALIDATION"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindNotFound     Kind = "NOT_FOUND"
	KindRateLimited  Kind = "RATE_LIMIT"
	KindDependency   Kind = "DEPENDENCY"
	KindInternal     Kind = "APP_ERROR"
)

type Error struct {
	Kind    Kind
	Message string
	Details any

	// RetryAfter carries a server-supplied cooldown hint for KindRateLimited.
	// Zero means no hint.
	RetryAfter time.Duration

	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

func Validation(message string) *Error {
	return New(KindValidation, message)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func RateLimited(message string, retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimited, Message: message, RetryAfter: retryAfter}
}

func Dependency(message string, cause error) *Error {
	return Wrap(KindDependency, message, cause)
}

// KindOf returns the taxonomy kind of err, or KindInternal for anything that
// is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Retryable reports whether err is worth another attempt: the external store
// being rate limited or transiently unavailable. Validation, auth and
// not-found outcomes are final.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindRateLimited, KindDependency:
		return true
	default:
		return false
	}
}

// RetryAfterHint returns the server-supplied cooldown attached to err, if any.
func RetryAfterHint(err error) (time.Duration, bool) {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.RetryAfter > 0 {
		return appErr.RetryAfter, true
	}
	return 0, false
}

// HTTPStatus maps a taxonomy kind to the response status owned by the API.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindDependency:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
