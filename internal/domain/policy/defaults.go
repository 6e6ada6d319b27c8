package policy

// DefaultOvertimeNight returns the documented fallback rules.
func DefaultOvertimeNight() OvertimeNight {
	return OvertimeNight{
		NightStartMinute:       DefaultNightStartMinute,
		NightEndMinute:         DefaultNightEndMinute,
		NightRate:              DefaultNightRate,
		OvertimeThresholdHours: DefaultOvertimeThresholdHours,
		OvertimeRate:           DefaultOvertimeRate,
		BreakTiers:             []BreakTier{{MinHours: 5, Minutes: DefaultLunchMinutes}},
		LunchMinutes:           DefaultLunchMinutes,
		DinnerMinutes:          DefaultDinnerMinutes,
		DinnerThresholdHours:   DefaultDinnerThresholdHours,
		StandardWeeklyHours:    DefaultStandardWeeklyHours,
	}
}

func DefaultLeaveAccrual() LeaveAccrual {
	return LeaveAccrual{
		Saturday:        AccrualRates{BaseRate: 1.0, OvertimeRate: 1.5},
		SundayOrHoliday: AccrualRates{BaseRate: 1.5, OvertimeRate: 2.0},
		BaseHours:       DefaultAccrualBaseHours,
	}
}

// Defaults is used until a policy store has been read successfully.
func Defaults() Set {
	return Set{
		OvertimeNight: DefaultOvertimeNight(),
		Accrual:       DefaultLeaveAccrual(),
		Source:        SourceDefaults,
	}
}

// Tiers returns the configured break tiers, or the default lunch tier.
func (p OvertimeNight) Tiers() []BreakTier {
	if len(p.BreakTiers) == 0 {
		return []BreakTier{{MinHours: 5, Minutes: DefaultLunchMinutes}}
	}
	return p.BreakTiers
}

// Lunch is the fixed lunch deduction in minutes. A negative value disables it.
func (p OvertimeNight) Lunch() int {
	if p.LunchMinutes < 0 {
		return 0
	}
	if p.LunchMinutes == 0 {
		return DefaultLunchMinutes
	}
	return p.LunchMinutes
}

func (p OvertimeNight) Dinner() int {
	if p.DinnerMinutes <= 0 {
		return DefaultDinnerMinutes
	}
	return p.DinnerMinutes
}

func (p OvertimeNight) DinnerThreshold() float64 {
	if p.DinnerThresholdHours <= 0 {
		return DefaultDinnerThresholdHours
	}
	return p.DinnerThresholdHours
}

// NightWindow returns the night window bounds in minutes after midnight.
// Equal bounds fall back to the default window.
func (p OvertimeNight) NightWindow() (start, end int) {
	start, end = p.NightStartMinute, p.NightEndMinute
	if start == end || start < 0 || end < 0 || start >= 24*60 || end > 24*60 {
		return DefaultNightStartMinute, DefaultNightEndMinute
	}
	return start, end
}

func (a LeaveAccrual) Base() float64 {
	if a.BaseHours <= 0 {
		return DefaultAccrualBaseHours
	}
	return a.BaseHours
}
