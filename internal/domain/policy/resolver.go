package policy

import "time"

// FlexibleWindowFor returns the first window whose inclusive date range contains date.
func FlexibleWindowFor(date time.Time, windows []Window) (Window, bool) {
	day := dateOnly(date)
	for _, w := range windows {
		if day.Before(dateOnly(w.StartDate)) || day.After(dateOnly(w.EndDate)) {
			continue
		}
		return w, true
	}
	return Window{}, false
}

// OvertimeThreshold returns the daily hours above which work counts as overtime.
// A flexible window always wins over the configured threshold.
func OvertimeThreshold(date time.Time, windows []Window, p OvertimeNight) float64 {
	if _, ok := FlexibleWindowFor(date, windows); ok {
		return FlexibleOvertimeThresholdHours
	}
	if p.OvertimeThresholdHours > 0 {
		return p.OvertimeThresholdHours
	}
	return DefaultOvertimeThresholdHours
}

// DayType classifies date by weekday only.
func DayType(date time.Time) WorkDayType {
	return DayTypeWithCalendar(date, nil)
}

// DayTypeWithCalendar classifies date, treating calendar holidays like Sundays.
// A nil calendar keeps the weekday/Saturday/Sunday model.
func DayTypeWithCalendar(date time.Time, cal HolidayCalendar) WorkDayType {
	switch date.Weekday() {
	case time.Saturday:
		return Saturday
	case time.Sunday:
		return SundayOrHoliday
	}
	if cal != nil && cal.IsHoliday(date) {
		return SundayOrHoliday
	}
	return Weekday
}

func (s Set) Threshold(date time.Time) float64 {
	return OvertimeThreshold(date, s.Windows, s.OvertimeNight)
}

func (s Set) DayType(date time.Time) WorkDayType {
	if len(s.Holidays) == 0 {
		return DayType(date)
	}
	return DayTypeWithCalendar(date, s.Holidays)
}

// StandardWeeklyHours is taken from the flexible window covering date, then the policy, then the default.
func (s Set) StandardWeeklyHours(date time.Time) float64 {
	if w, ok := FlexibleWindowFor(date, s.Windows); ok && w.StandardWeeklyHours > 0 {
		return w.StandardWeeklyHours
	}
	if s.OvertimeNight.StandardWeeklyHours > 0 {
		return s.OvertimeNight.StandardWeeklyHours
	}
	return DefaultStandardWeeklyHours
}

// AccrualRatesFor returns the rates for a work day type and whether that day accrues at all.
func (a LeaveAccrual) AccrualRatesFor(dayType WorkDayType) (AccrualRates, bool) {
	switch dayType {
	case Saturday:
		return a.Saturday, true
	case SundayOrHoliday:
		return a.SundayOrHoliday, true
	default:
		return AccrualRates{}, false
	}
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
