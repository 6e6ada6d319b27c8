package worktime

import (
	"strings"
	"time"

	"hrportal/internal/domain/policy"
)

const (
	ReasonDinnerMissing     = "dinner_missing"
	ReasonInsufficientHours = "insufficient_hours"
	ReasonLateCheckIn       = "late_check_in"
	ReasonEarlyCheckOut     = "early_check_out"
	ReasonDinnerRecorded    = "dinner_recorded"
)

type DinnerCheck struct {
	IsMissing bool    `json:"isMissing"`
	NetHours  float64 `json:"netHours"`
	Reason    string  `json:"reason"`
}

// DetectMissingDinner decides whether an evening meal break should be flagged
// as missing. Conditions are checked in order and the first failure names the reason.
func DetectMissingDinner(checkIn, checkOut, currentDinnerStatus string, hadDinner bool) (DinnerCheck, error) {
	return DetectMissingDinnerWithPolicy(checkIn, checkOut, currentDinnerStatus, hadDinner, policy.DefaultOvertimeNight())
}

func DetectMissingDinnerWithPolicy(checkIn, checkOut, currentDinnerStatus string, hadDinner bool, p policy.OvertimeNight) (DinnerCheck, error) {
	shift, err := NewShift(referenceDate, checkIn, checkOut)
	if err != nil {
		return DinnerCheck{}, err
	}

	net := shift.Duration() - time.Duration(shiftBreakMinutes(shift, hadDinner, p))*time.Minute
	if net < 0 {
		net = 0
	}
	check := DinnerCheck{NetHours: tenths(hoursOf(net))}

	switch {
	case net.Hours() < p.DinnerThreshold():
		check.Reason = ReasonInsufficientHours
	case shift.startOffset() > dinnerTime:
		check.Reason = ReasonLateCheckIn
	case shift.endOffset() < dinnerTime:
		check.Reason = ReasonEarlyCheckOut
	case strings.TrimSpace(currentDinnerStatus) != "" || hadDinner:
		check.Reason = ReasonDinnerRecorded
	default:
		check.IsMissing = true
		check.Reason = ReasonDinnerMissing
	}
	return check, nil
}
