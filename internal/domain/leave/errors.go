package leave

import (
	"errors"
	"fmt"
)

var (
	ErrValidation           = errors.New("validation error")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrUninitializedBalance = errors.New("uninitialized balance")
	ErrInvalidBalance       = errors.New("invalid balance")
	ErrAlreadyProcessed     = errors.New("already processed")
	ErrNotFound             = errors.New("not found")
	ErrTransientBackend     = errors.New("transient backend error")
)

// Error carries one of the sentinel kinds above plus a message meant for the caller.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.Error()
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WrapError attaches a kind to a backend error so callers can match it with errors.Is.
func WrapError(kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Kind reports which sentinel err carries, or nil.
func Kind(err error) error {
	for _, kind := range []error{
		ErrValidation, ErrInsufficientBalance, ErrUninitializedBalance, ErrInvalidBalance,
		ErrAlreadyProcessed, ErrNotFound, ErrTransientBackend,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
