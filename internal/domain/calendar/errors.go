package calendar

import "errors"

var ErrInvalidEvent = errors.New("invalid calendar event")
