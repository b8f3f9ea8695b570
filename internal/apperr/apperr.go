// Package apperr defines the error taxonomy shared by the order, catalog and
// notification services. Handlers map kinds to transport status codes;
// everything below the handlers wraps causes with fmt.Errorf("%w").
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation policy and status mapping.
type Kind int

const (
	// KindInternal is an unexpected fault, surfaced generically and logged
	// with detail server-side only.
	KindInternal Kind = iota
	// KindInvalidRequest is malformed caller input; never retried.
	KindInvalidRequest
	// KindNotFound is a missing identity, order or product.
	KindNotFound
	// KindConflict is a stock-availability rejection carrying structured detail.
	KindConflict
	// KindUnauthorized means the caller supplied no usable identity.
	KindUnauthorized
	// KindForbidden means the caller's role does not permit the operation.
	KindForbidden
	// KindUnavailable is a transport-level failure talking to a collaborator.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error carries a kind, a caller-safe message, an optional structured detail
// payload (used for stock-check conflicts) and an optional wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Detail  interface{}
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithDetail attaches a structured detail payload.
func (e *Error) WithDetail(detail interface{}) *Error {
	e.Detail = detail
	return e
}

// KindOf extracts the kind from err, defaulting to KindInternal for errors
// that did not originate in this taxonomy.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// DetailOf returns the structured detail attached to err, if any.
func DetailOf(err error) interface{} {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Detail
	}
	return nil
}
