package worktime

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTime   = errors.New("invalid time of day")
	ErrInvalidPeriod = errors.New("invalid period")
)

// ValidationError reports a malformed time-of-day value.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid time %q: %s", e.Value, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidTime
}
