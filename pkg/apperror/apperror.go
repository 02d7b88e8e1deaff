// Package apperror is the error taxonomy shared by the usecases and the HTTP layer.
package apperror

import (
	"errors"
	"net/http"
)

type Kind string

const (
	KindInvalidInput       Kind = "invalid_input"
	KindConflict           Kind = "conflict"
	KindNotFound           Kind = "not_found"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindUnauthenticated    Kind = "unauthenticated"
	KindUnauthorized       Kind = "unauthorized"
	KindSessionExpired     Kind = "session_expired"
	KindInternal           Kind = "internal"
)

// Error is a client-facing failure. Message is safe to return to the caller;
// Err, when set, is the underlying cause and is only logged.
type Error struct {
	Kind       Kind
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same kind, so the Err* values below work as
// sentinels with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidInput       = newError(KindInvalidInput, "invalid input")
	ErrConflict           = newError(KindConflict, "resource already exists")
	ErrNotFound           = newError(KindNotFound, "resource not found")
	ErrInvalidCredentials = newError(KindInvalidCredentials, "invalid credentials")
	ErrUnauthenticated    = newError(KindUnauthenticated, "unauthenticated request")
	ErrUnauthorized       = newError(KindUnauthorized, "unauthorized request")
	ErrSessionExpired     = newError(KindSessionExpired, "session expired, please log in again")
	ErrInternal           = newError(KindInternal, "something went wrong")
)

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, StatusCode: statusFor(kind), Message: msg}
}

// Every client-side kind maps to 400 to keep the response surface stable for
// existing clients. Only internal failures use 500.
func statusFor(kind Kind) int {
	if kind == KindInternal {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func InvalidInput(msg string) *Error       { return newError(KindInvalidInput, msg) }
func Conflict(msg string) *Error           { return newError(KindConflict, msg) }
func NotFound(msg string) *Error           { return newError(KindNotFound, msg) }
func InvalidCredentials(msg string) *Error { return newError(KindInvalidCredentials, msg) }
func Unauthenticated(msg string) *Error    { return newError(KindUnauthenticated, msg) }
func Unauthorized(msg string) *Error       { return newError(KindUnauthorized, msg) }
func SessionExpired(msg string) *Error     { return newError(KindSessionExpired, msg) }

// Internal wraps an unexpected failure. The cause never reaches the client.
func Internal(err error) *Error {
	e := newError(KindInternal, ErrInternal.Message)
	e.Err = err
	return e
}

// From returns err as an *Error, treating anything unclassified as internal.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
