// Package apperr defines the error kinds shared by the services and the HTTP layer.
//
// Services return *Error values; the HTTP layer maps the Kind to a status code exactly
// once, and the client maps status codes back to kinds.
package apperr

import (
	"context"
	"errors"
	"net/http"
)

// Kind classifies an error for the request boundary.
type Kind int

const (
	// KindUnknown is any error that was not classified. It is reported as 500.
	KindUnknown Kind = iota
	// KindValidation is malformed or missing input.
	KindValidation
	// KindAuthentication is a missing, invalid or expired token.
	KindAuthentication
	// KindAuthorization is an authenticated actor without enough privilege.
	KindAuthorization
	// KindNotFound is a referenced entity that does not exist.
	KindNotFound
	// KindStoreUnavailable is a persistence failure or timeout.
	KindStoreUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "ValidationError"
	case KindAuthentication:
		return "AuthenticationError"
	case KindAuthorization:
		return "AuthorizationError"
	case KindNotFound:
		return "NotFoundError"
	case KindStoreUnavailable:
		return "StoreUnavailable"
	default:
		return "UnknownError"
	}
}

// Status returns the HTTP status code for the kind.
func (k Kind) Status() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified error with a message that is safe to show to users.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, apperr.NotFound("")) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Authentication(msg string) *Error {
	return &Error{Kind: KindAuthentication, Message: msg}
}

func Authorization(msg string) *Error {
	return &Error{Kind: KindAuthorization, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// StoreUnavailable wraps a persistence failure. The cause is kept for logging but the
// message shown to users stays generic.
func StoreUnavailable(err error) *Error {
	return &Error{Kind: KindStoreUnavailable, Message: "storage unavailable", Err: err}
}

// KindOf returns the kind of err. Context deadlines and cancellations count as
// KindStoreUnavailable since every blocking call in the core is a store call.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindStoreUnavailable
	}
	return KindUnknown
}

// Message returns the user-facing message for err.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}

// FromStatus builds an *Error from an HTTP status code and message. Used by clients.
func FromStatus(status int, msg string) *Error {
	kind := KindUnknown
	switch status {
	case http.StatusBadRequest:
		kind = KindValidation
	case http.StatusUnauthorized:
		kind = KindAuthentication
	case http.StatusForbidden:
		kind = KindAuthorization
	case http.StatusNotFound:
		kind = KindNotFound
	case http.StatusInternalServerError, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		kind = KindStoreUnavailable
	}
	return &Error{Kind: kind, Message: msg}
}
