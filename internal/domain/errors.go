package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument indicates a request value outside its allowed range.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnavailable indicates the entity exists but cannot be ordered right now.
	ErrUnavailable = errors.New("unavailable")
	// ErrLimitExceeded indicates a cart limit would be exceeded.
	ErrLimitExceeded = errors.New("limit exceeded")
	// ErrInvalidState indicates the operation needs an active cart that is absent.
	ErrInvalidState = errors.New("invalid state")
)

// Error carries a client-facing message together with one of the sentinel kinds above.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// Errorf builds an *Error of the given kind.
func Errorf(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
