package worktime

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const maxClockHour = 47

// referenceDate anchors calculations that only care about clock times.
var referenceDate = time.Date(2000, time.January, 3, 0, 0, 0, 0, time.UTC)

// ParseClock converts HH:MM[:SS] into an offset from midnight. Hours from 24
// up to 47 describe the following day, so "25:30" is 01:30 the next day.
func ParseClock(value string) (time.Duration, error) {
	raw := strings.TrimSpace(value)
	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, &ValidationError{Value: value, Reason: "expected HH:MM or HH:MM:SS"}
	}

	hours, ok := clockPart(parts[0], maxClockHour)
	if !ok {
		return 0, &ValidationError{Value: value, Reason: "hour out of range"}
	}
	minutes, ok := clockPart(parts[1], 59)
	if !ok {
		return 0, &ValidationError{Value: value, Reason: "minute out of range"}
	}
	seconds := 0
	if len(parts) == 3 {
		if seconds, ok = clockPart(parts[2], 59); !ok {
			return 0, &ValidationError{Value: value, Reason: "second out of range"}
		}
	}

	return time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second, nil
}

func clockPart(s string, max int) (int, bool) {
	if len(s) == 0 || len(s) > 2 {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n > max {
		return 0, false
	}
	return n, true
}

// Parse resolves a clock value on date into an instant. Hours of 24 and
// above advance the date by one day.
func Parse(date time.Time, value string) (time.Time, error) {
	offset, err := ParseClock(value)
	if err != nil {
		return time.Time{}, err
	}
	return midnight(date).Add(offset), nil
}

// ResolveRollover moves checkOut to the following day when it does not fall after checkIn.
func ResolveRollover(checkIn, checkOut time.Time) time.Time {
	if !checkOut.After(checkIn) {
		return checkOut.AddDate(0, 0, 1)
	}
	return checkOut
}

// Shift is a resolved check-in/check-out pair with CheckOut after CheckIn.
type Shift struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewShift parses both clock values on date and applies the overnight rollover.
func NewShift(date time.Time, checkIn, checkOut string) (Shift, error) {
	in, err := Parse(date, checkIn)
	if err != nil {
		return Shift{}, withField(err, "checkIn")
	}
	out, err := Parse(date, checkOut)
	if err != nil {
		return Shift{}, withField(err, "checkOut")
	}
	return Shift{CheckIn: in, CheckOut: ResolveRollover(in, out)}, nil
}

func (s Shift) Duration() time.Duration {
	return s.CheckOut.Sub(s.CheckIn)
}

func (s Shift) Hours() float64 {
	return s.Duration().Hours()
}

// startOffset is the check-in time measured from midnight of the check-in day.
func (s Shift) startOffset() time.Duration {
	return s.CheckIn.Sub(midnight(s.CheckIn))
}

// endOffset is the check-out time measured from midnight of the check-in day,
// so an overnight check-out exceeds 24h.
func (s Shift) endOffset() time.Duration {
	return s.CheckOut.Sub(midnight(s.CheckIn))
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func withField(err error, field string) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		copied := *ve
		copied.Field = field
		return &copied
	}
	return err
}
