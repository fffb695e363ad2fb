// Package apperrors defines the closed set of error kinds the API can
// produce. Handlers switch on the kind to pick an HTTP status instead of
// matching on error message strings.
package apperrors

import "errors"

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota // unexpected failure, maps to 500
	KindValidation
	KindDuplicateUser
	KindInvalidCredentials
	KindUnauthenticated
	KindUserNotFound
	KindForbidden
	KindNotFound
)

// Error carries a kind alongside a client-safe message and an optional
// wrapped cause. The cause is for server-side logs only.
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

// New creates an Error with the given kind and client-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an Error that records err as its cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err. Errors that do not carry a kind are
// treated as internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// MessageOf extracts the client-safe message from err. For kindless errors
// it returns a generic message so internals never leak to clients.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "server error"
}
