package payroll

const (
	ElementTypeEarning   = "earning"
	ElementTypeDeduction = "deduction"

	CodeOvertime          = "overtime"
	CodeNightDifferential = "night_differential"
)
