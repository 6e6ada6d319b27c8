package payroll

import (
	"fmt"

	"github.com/shopspring/decimal"

	"hrportal/internal/domain/worktime"
)

type InputLine struct {
	Type   string  `json:"type"`
	Code   string  `json:"code"`
	Hours  float64 `json:"hours,omitempty"`
	Amount float64 `json:"amount"`
}

// Rates prices one reconciled period. OvertimeRate and NightRate are
// multipliers applied on top of HourlyRate.
type Rates struct {
	HourlyRate   float64 `json:"hourlyRate"`
	OvertimeRate float64 `json:"overtimeRate"`
	NightRate    float64 `json:"nightRate"`
}

func (r Rates) Validate() error {
	if r.HourlyRate < 0 || r.OvertimeRate < 0 || r.NightRate < 0 {
		return fmt.Errorf("%w: rates must not be negative", ErrInvalidRate)
	}
	return nil
}

func ComputePayroll(baseSalary float64, inputs []InputLine) (gross, deductions, net float64) {
	g := decimal.NewFromFloat(baseSalary)
	d := decimal.Zero
	for _, input := range inputs {
		switch input.Type {
		case ElementTypeEarning:
			g = g.Add(decimal.NewFromFloat(input.Amount))
		case ElementTypeDeduction:
			d = d.Add(decimal.NewFromFloat(input.Amount))
		}
	}
	return g.InexactFloat64(), d.InexactFloat64(), g.Sub(d).InexactFloat64()
}

// WorkTimeLines prices the payable overtime and night hours of a period as
// earning lines. Substitute and compensatory hours are paid as leave, not here.
func WorkTimeLines(summary worktime.PeriodSummary, rates Rates) ([]InputLine, error) {
	if err := rates.Validate(); err != nil {
		return nil, err
	}
	hourly := decimal.NewFromFloat(rates.HourlyRate)

	lines := make([]InputLine, 0, 2)
	if summary.PayableOvertimeHours > 0 {
		lines = append(lines, InputLine{
			Type:   ElementTypeEarning,
			Code:   CodeOvertime,
			Hours:  summary.PayableOvertimeHours,
			Amount: money(decimal.NewFromFloat(summary.PayableOvertimeHours).Mul(hourly).Mul(decimal.NewFromFloat(rates.OvertimeRate))),
		})
	}
	if summary.NightHours > 0 && rates.NightRate > 0 {
		lines = append(lines, InputLine{
			Type:   ElementTypeEarning,
			Code:   CodeNightDifferential,
			Hours:  summary.NightHours,
			Amount: money(decimal.NewFromFloat(summary.NightHours).Mul(hourly).Mul(decimal.NewFromFloat(rates.NightRate))),
		})
	}
	return lines, nil
}

// OvertimePay is the overtime line amount alone.
func OvertimePay(summary worktime.PeriodSummary, rates Rates) (float64, error) {
	lines, err := WorkTimeLines(summary, rates)
	if err != nil {
		return 0, err
	}
	for _, line := range lines {
		if line.Code == CodeOvertime {
			return line.Amount, nil
		}
	}
	return 0, nil
}

// Statement is the priced result of one reconciled period.
type Statement struct {
	Lines       []InputLine `json:"lines"`
	OvertimePay float64     `json:"overtimePay"`
	Gross       float64     `json:"gross"`
	Deductions  float64     `json:"deductions"`
	Net         float64     `json:"net"`
}

// PeriodPay prices a period's work-time lines on top of baseSalary and
// subtracts the given deduction lines.
func PeriodPay(summary worktime.PeriodSummary, rates Rates, baseSalary float64, deductions []InputLine) (Statement, error) {
	if baseSalary < 0 {
		return Statement{}, fmt.Errorf("%w: base salary must not be negative", ErrInvalidRate)
	}
	for _, d := range deductions {
		if d.Type != ElementTypeDeduction || d.Amount < 0 {
			return Statement{}, fmt.Errorf("%w: deductions must be non-negative %s lines", ErrInvalidLine, ElementTypeDeduction)
		}
	}
	lines, err := WorkTimeLines(summary, rates)
	if err != nil {
		return Statement{}, err
	}

	out := Statement{Lines: append(lines, deductions...)}
	for _, line := range lines {
		if line.Code == CodeOvertime {
			out.OvertimePay = line.Amount
		}
	}
	gross, deducted, net := ComputePayroll(baseSalary, out.Lines)
	out.Gross = money(decimal.NewFromFloat(gross))
	out.Deductions = money(decimal.NewFromFloat(deducted))
	out.Net = money(decimal.NewFromFloat(net))
	return out, nil
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
