package policy

const (
	DefaultOvertimeThresholdHours  = 8
	FlexibleOvertimeThresholdHours = 12
	DefaultLunchMinutes            = 60
	DefaultDinnerMinutes           = 60
	DefaultDinnerThresholdHours    = 8
	DefaultNightStartMinute        = 22 * 60
	DefaultNightEndMinute          = 6 * 60
	DefaultNightRate               = 0.5
	DefaultOvertimeRate            = 1.5
	DefaultStandardWeeklyHours     = 40
	DefaultAccrualBaseHours        = 8

	SourceDefaults = "defaults"
	SourceStore    = "store"
	SourceCache    = "cache"
)
