package worktime

import (
	"time"

	"hrportal/internal/domain/policy"
)

// AttendanceRecord is one day of captured clock times.
type AttendanceRecord struct {
	Date      time.Time `json:"date"`
	CheckIn   string    `json:"checkIn"`
	CheckOut  string    `json:"checkOut"`
	HadDinner bool      `json:"hadDinner"`
}

// Breakdown holds the payroll hour categories for one day. BasicHours plus
// OvertimeHours always equals TotalHours.
type Breakdown struct {
	Date               time.Time          `json:"date"`
	TotalHours         float64            `json:"totalHours"`
	BasicHours         float64            `json:"basicHours"`
	OvertimeHours      float64            `json:"overtimeHours"`
	NightHours         float64            `json:"nightHours"`
	SubstituteHours    float64            `json:"substituteHours"`
	CompensatoryHours  float64            `json:"compensatoryHours"`
	DinnerBreakApplied bool               `json:"dinnerBreakApplied"`
	ThresholdHours     float64            `json:"thresholdHours"`
	WorkDayType        policy.WorkDayType `json:"workDayType"`
}

type PeriodTotals struct {
	WorkedHours         float64 `json:"workedHours"`
	NightHours          float64 `json:"nightHours"`
	SubstituteHours     float64 `json:"substituteHours"`
	CompensatoryHours   float64 `json:"compensatoryHours"`
	StandardWeeklyHours float64 `json:"standardWeeklyHours"`
	Weeks               float64 `json:"weeks"`
}

type PeriodSummary struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
	PeriodTotals
	StandardHours        float64 `json:"standardHours"`
	PayableOvertimeHours float64 `json:"payableOvertimeHours"`
}
