package worktime

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"hrportal/internal/domain/policy"
)

// Compute turns one day's clock times into payroll hour categories. The
// lunch deduction is applied as given; a dinner hour is deducted when the
// hours left after lunch reach the dinner threshold and the shift spans
// dinner time. Missing clock values produce a
// zero breakdown and malformed ones a *ValidationError.
func Compute(date time.Time, checkIn, checkOut string, lunchMinutes int, set policy.Set) (Breakdown, error) {
	return compute(date, checkIn, checkOut, lunchMinutes, false, set)
}

// ComputeRecord applies the policy lunch deduction and also honours the
// record's own dinner flag. The dinner hour is never deducted twice.
func ComputeRecord(rec AttendanceRecord, set policy.Set) (Breakdown, error) {
	return compute(rec.Date, rec.CheckIn, rec.CheckOut, set.OvertimeNight.Lunch(), rec.HadDinner, set)
}

func compute(date time.Time, checkIn, checkOut string, lunchMinutes int, hadDinner bool, set policy.Set) (Breakdown, error) {
	out := Breakdown{
		Date:           midnight(date),
		ThresholdHours: set.Threshold(date),
		WorkDayType:    set.DayType(date),
	}
	if strings.TrimSpace(checkIn) == "" || strings.TrimSpace(checkOut) == "" {
		return out, nil
	}

	shift, err := NewShift(date, checkIn, checkOut)
	if err != nil {
		return Breakdown{}, err
	}

	p := set.OvertimeNight
	worked := shift.Duration()
	if lunchMinutes > 0 {
		worked -= time.Duration(lunchMinutes) * time.Minute
	}
	if hadDinner || (hoursOf(worked).InexactFloat64() >= p.DinnerThreshold() && spansDinner(shift)) {
		worked -= time.Duration(p.Dinner()) * time.Minute
		out.DinnerBreakApplied = true
	}
	if worked < 0 {
		worked = 0
	}

	total := hoursOf(worked).Round(1)
	basic := decimal.Min(total, dec(out.ThresholdHours))
	overtime := total.Sub(basic)

	out.TotalHours = total.InexactFloat64()
	out.BasicHours = basic.InexactFloat64()
	out.OvertimeHours = overtime.InexactFloat64()
	out.NightHours = tenths(hoursOf(nightDuration(shift, p)))

	if rates, ok := set.Accrual.AccrualRatesFor(out.WorkDayType); ok {
		accrued := accrue(total, rates, set.Accrual.Base())
		switch out.WorkDayType {
		case policy.Saturday:
			out.SubstituteHours = accrued
		case policy.SundayOrHoliday:
			out.CompensatoryHours = accrued
		}
	}
	return out, nil
}

// accrue credits hours up to baseHours at the base rate and the rest at the overtime rate.
func accrue(total decimal.Decimal, rates policy.AccrualRates, baseHours float64) float64 {
	base := dec(baseHours)
	within := decimal.Min(total, base)
	beyond := decimal.Max(decimal.Zero, total.Sub(base))
	return tenths(within.Mul(dec(rates.BaseRate)).Add(beyond.Mul(dec(rates.OvertimeRate))))
}
