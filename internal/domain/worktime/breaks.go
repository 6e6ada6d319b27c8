package worktime

import (
	"time"

	"hrportal/internal/domain/policy"
)

const (
	dinnerTime          = 19 * time.Hour
	latestDinnerCheckIn = 18 * time.Hour
)

// BreakMinutes returns the meal-break deduction under the default tiers:
// nothing below five hours, sixty minutes from five hours, and another sixty
// whenever dinner was taken.
func BreakMinutes(checkIn, checkOut string, hadDinner bool) (int, error) {
	return BreakMinutesWithPolicy(checkIn, checkOut, hadDinner, policy.DefaultOvertimeNight())
}

func BreakMinutesWithPolicy(checkIn, checkOut string, hadDinner bool, p policy.OvertimeNight) (int, error) {
	shift, err := NewShift(referenceDate, checkIn, checkOut)
	if err != nil {
		return 0, err
	}
	return shiftBreakMinutes(shift, hadDinner, p), nil
}

// shiftBreakMinutes applies the highest tier the shift reaches. Shifts below
// the lowest tier get no lunch deduction at all.
func shiftBreakMinutes(s Shift, hadDinner bool, p policy.OvertimeNight) int {
	hours := s.Hours()
	minutes := 0
	reached := -1.0
	for _, tier := range p.Tiers() {
		if hours >= tier.MinHours && tier.MinHours > reached {
			reached = tier.MinHours
			minutes = tier.Minutes
		}
	}
	if hadDinner {
		minutes += p.Dinner()
	}
	return minutes
}

// AutoDetectDinnerFlag reports whether a shift long enough and late enough
// should be treated as including an unrecorded dinner break.
func AutoDetectDinnerFlag(checkIn, checkOut string) (bool, error) {
	return AutoDetectDinnerFlagWithPolicy(checkIn, checkOut, policy.DefaultOvertimeNight())
}

func AutoDetectDinnerFlagWithPolicy(checkIn, checkOut string, p policy.OvertimeNight) (bool, error) {
	shift, err := NewShift(referenceDate, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return autoDetectDinner(shift, p), nil
}

func autoDetectDinner(s Shift, p policy.OvertimeNight) bool {
	return s.Hours() >= p.DinnerThreshold() && spansDinner(s)
}

// spansDinner reports whether the shift starts by 18:00 and reaches 19:00.
// A check-out at exactly 19:00 counts as reaching dinner time.
func spansDinner(s Shift) bool {
	return s.startOffset() <= latestDinnerCheckIn && s.endOffset() >= dinnerTime
}
