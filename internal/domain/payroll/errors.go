package payroll

import "errors"

var (
	ErrInvalidRate = errors.New("invalid pay rate")
	ErrInvalidLine = errors.New("invalid pay line")
)
