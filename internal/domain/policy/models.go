package policy

import "time"

type WorkDayType string

const (
	Weekday         WorkDayType = "weekday"
	Saturday        WorkDayType = "saturday"
	SundayOrHoliday WorkDayType = "sunday_or_holiday"
)

// Window is a flexible work period. While it is in effect the daily
// overtime threshold is fixed at FlexibleOvertimeThresholdHours.
type Window struct {
	ID                  string    `json:"id,omitempty"`
	Name                string    `json:"name,omitempty"`
	StartDate           time.Time `json:"startDate"`
	EndDate             time.Time `json:"endDate"`
	StandardWeeklyHours float64   `json:"standardWeeklyHours"`
}

// BreakTier deducts Minutes once a shift reaches MinHours.
type BreakTier struct {
	MinHours float64 `json:"minHours"`
	Minutes  int     `json:"minutes"`
}

type OvertimeNight struct {
	NightStartMinute       int         `json:"nightStartMinute"`
	NightEndMinute         int         `json:"nightEndMinute"`
	NightRate              float64     `json:"nightRate"`
	OvertimeThresholdHours float64     `json:"overtimeThresholdHours"`
	OvertimeRate           float64     `json:"overtimeRate"`
	BreakTiers             []BreakTier `json:"breakTiers"`
	LunchMinutes           int         `json:"lunchMinutes"`
	DinnerMinutes          int         `json:"dinnerMinutes"`
	DinnerThresholdHours   float64     `json:"dinnerThresholdHours"`
	StandardWeeklyHours    float64     `json:"standardWeeklyHours"`
}

type AccrualRates struct {
	BaseRate     float64 `json:"baseRate"`
	OvertimeRate float64 `json:"overtimeRate"`
}

type LeaveAccrual struct {
	Saturday        AccrualRates `json:"saturday"`
	SundayOrHoliday AccrualRates `json:"sundayOrHoliday"`
	// BaseHours is the portion of a day accrued at the base rate.
	BaseHours float64 `json:"baseHours"`
	// MaxBalanceHours caps hour balances when accruals are credited. Zero means uncapped.
	MaxBalanceHours float64 `json:"maxBalanceHours"`
}

// HolidayCalendar marks dates that are paid like Sundays.
type HolidayCalendar interface {
	IsHoliday(date time.Time) bool
}

// Holidays is a date-keyed (YYYY-MM-DD) calendar.
type Holidays map[string]string

func (h Holidays) IsHoliday(date time.Time) bool {
	if len(h) == 0 {
		return false
	}
	_, ok := h[date.Format(dateLayout)]
	return ok
}

// Set is the policy snapshot handed to the work-time engine. It is built
// once per load and must be treated as read-only.
type Set struct {
	Windows       []Window      `json:"windows"`
	OvertimeNight OvertimeNight `json:"overtimeNight"`
	Accrual       LeaveAccrual  `json:"accrual"`
	Holidays      Holidays      `json:"holidays,omitempty"`
	LoadedAt      time.Time     `json:"loadedAt"`
	Source        string        `json:"source"`
}

const dateLayout = "2006-01-02"
