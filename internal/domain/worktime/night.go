package worktime

import (
	"time"

	"hrportal/internal/domain/policy"
)

// NightHours returns the hours of a shift that fall inside the night window,
// rounded to 0.1. The result is informational and never reduces worked hours.
func NightHours(checkIn, checkOut string, p policy.OvertimeNight) (float64, error) {
	shift, err := NewShift(referenceDate, checkIn, checkOut)
	if err != nil {
		return 0, err
	}
	return tenths(hoursOf(nightDuration(shift, p))), nil
}

// nightDuration sums the overlap with every night window touching the shift,
// starting with the one opened the evening before check-in.
func nightDuration(s Shift, p policy.OvertimeNight) time.Duration {
	startMin, endMin := p.NightWindow()
	start := time.Duration(startMin) * time.Minute
	end := time.Duration(endMin) * time.Minute
	if end <= start {
		end += 24 * time.Hour
	}

	base := midnight(s.CheckIn)
	var total time.Duration
	for day := -1; base.AddDate(0, 0, day).Add(start).Before(s.CheckOut); day++ {
		anchor := base.AddDate(0, 0, day)
		total += overlap(s.CheckIn, s.CheckOut, anchor.Add(start), anchor.Add(end))
	}
	return total
}

func overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}
	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}
