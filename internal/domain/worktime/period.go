package worktime

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"hrportal/internal/domain/policy"
)

// PayableOvertimeHours is the period overtime left after the standard hours
// and everything already paid through night, substitute or compensatory
// channels are taken out. It never goes below zero.
func PayableOvertimeHours(t PeriodTotals) float64 {
	standard := dec(t.StandardWeeklyHours).Mul(dec(t.Weeks))
	return payable(dec(t.WorkedHours), standard, dec(t.NightHours).Add(dec(t.SubstituteHours)).Add(dec(t.CompensatoryHours)))
}

func payable(worked, standard, compensated decimal.Decimal) float64 {
	excess := worked.Sub(standard).Sub(compensated)
	if excess.IsNegative() {
		return 0
	}
	return tenths(excess)
}

// SummarizePeriod aggregates daily breakdowns over the inclusive range
// [start, end]. Standard weekly hours come from the policy in effect on start.
func SummarizePeriod(start, end time.Time, days []Breakdown, set policy.Set) (PeriodSummary, error) {
	from, to := midnight(start), midnight(end)
	if to.Before(from) {
		return PeriodSummary{}, fmt.Errorf("%w: end %s before start %s", ErrInvalidPeriod, to.Format(time.DateOnly), from.Format(time.DateOnly))
	}

	var worked, night, substitute, compensatory decimal.Decimal
	for _, b := range days {
		d := midnight(b.Date)
		if d.Before(from) || d.After(to) {
			return PeriodSummary{}, fmt.Errorf("%w: breakdown dated %s outside period", ErrInvalidPeriod, d.Format(time.DateOnly))
		}
		worked = worked.Add(dec(b.BasicHours)).Add(dec(b.OvertimeHours))
		night = night.Add(dec(b.NightHours))
		substitute = substitute.Add(dec(b.SubstituteHours))
		compensatory = compensatory.Add(dec(b.CompensatoryHours))
	}

	dayCount := int(to.Sub(from).Hours()/24) + 1
	weeks := decimal.NewFromInt(int64(dayCount)).Div(decimal.NewFromInt(7))
	weekly := set.StandardWeeklyHours(from)
	standard := dec(weekly).Mul(weeks)

	return PeriodSummary{
		Start: from,
		End:   to,
		Days:  dayCount,
		PeriodTotals: PeriodTotals{
			WorkedHours:         tenths(worked),
			NightHours:          tenths(night),
			SubstituteHours:     tenths(substitute),
			CompensatoryHours:   tenths(compensatory),
			StandardWeeklyHours: weekly,
			Weeks:               weeks.Round(2).InexactFloat64(),
		},
		StandardHours:        tenths(standard),
		PayableOvertimeHours: payable(worked, standard, night.Add(substitute).Add(compensatory)),
	}, nil
}
