package source

import (
	"errors"
	"fmt"
)

// Kind classifies an adapter failure.
type Kind int

const (
	// KindNotConfigured means required credentials are missing; no
	// network call was attempted.
	KindNotConfigured Kind = iota
	// KindNetwork covers transport failures, timeouts and unexpected
	// HTTP status codes.
	KindNetwork
	// KindParse means the response body was malformed or missing the
	// expected payload.
	KindParse
	// KindAuthDenied is a permission-level rejection. On the
	// authenticated path it terminates the remaining batch, since every
	// subsequent call would fail identically.
	KindAuthDenied
	// KindValidation means the caller-supplied target was malformed.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotConfigured:
		return "not_configured"
	case KindNetwork:
		return "network"
	case KindParse:
		return "parse"
	case KindAuthDenied:
		return "auth_denied"
	case KindValidation:
		return "validation"
	}
	return "unknown"
}

// Error is a classified adapter failure. Status carries the HTTP status
// code when one was received, 0 otherwise.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// NewError builds a classified error with a formatted message.
func NewError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError classifies an underlying error.
func WrapError(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// StatusError builds a network-level error carrying an HTTP status code.
func StatusError(status int, message string) *Error {
	return &Error{Kind: KindNetwork, Message: message, Status: status}
}

// KindOf returns the classification of err, or KindNetwork when err is
// not a classified adapter error (transport failures surface raw).
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindNetwork
}

// IsAuthDenied reports whether err is a permission-level rejection.
func IsAuthDenied(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindAuthDenied
}

// IsNotConfigured reports whether err means missing credentials.
func IsNotConfigured(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindNotConfigured
}
