package worktime

import (
	"errors"
	"testing"
	"time"

	"hrportal/internal/domain/policy"
)

func TestPayableOvertimeHours(t *testing.T) {
	cases := []struct {
		name   string
		totals PeriodTotals
		want   float64
	}{
		{"excess after compensated channels", PeriodTotals{WorkedHours: 95, NightHours: 2, SubstituteHours: 5, StandardWeeklyHours: 40, Weeks: 2}, 8},
		{"under standard", PeriodTotals{WorkedHours: 70, StandardWeeklyHours: 40, Weeks: 2}, 0},
		{"compensated exceeds excess", PeriodTotals{WorkedHours: 90, NightHours: 4, CompensatoryHours: 12, StandardWeeklyHours: 40, Weeks: 2}, 0},
	}
	for _, tc := range cases {
		if got := PayableOvertimeHours(tc.totals); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestSummarizePeriod(t *testing.T) {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	var days []Breakdown
	for i := 0; i < 14; i++ {
		date := start.AddDate(0, 0, i)
		switch date.Weekday() {
		case time.Saturday:
			if i < 7 {
				days = append(days, Breakdown{Date: date, TotalHours: 5, BasicHours: 5, SubstituteHours: 5})
			}
		case time.Sunday:
		default:
			b := Breakdown{Date: date, TotalHours: 9, BasicHours: 8, OvertimeHours: 1}
			if i == 0 {
				b.NightHours = 2
			}
			days = append(days, b)
		}
	}

	got, err := SummarizePeriod(start, end, days, policy.Defaults())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Days != 14 || got.Weeks != 2 {
		t.Fatalf("expected 14 days / 2 weeks, got %d / %v", got.Days, got.Weeks)
	}
	if got.WorkedHours != 95 || got.StandardHours != 80 {
		t.Fatalf("expected 95 worked against 80 standard, got %v / %v", got.WorkedHours, got.StandardHours)
	}
	if got.PayableOvertimeHours != 8 {
		t.Fatalf("expected 8 payable overtime hours, got %v", got.PayableOvertimeHours)
	}
}

func TestSummarizePeriodRejectsBadRanges(t *testing.T) {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	if _, err := SummarizePeriod(start, start.AddDate(0, 0, -1), nil, policy.Defaults()); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	outside := []Breakdown{{Date: start.AddDate(0, 0, 30), TotalHours: 8, BasicHours: 8}}
	if _, err := SummarizePeriod(start, start.AddDate(0, 0, 6), outside, policy.Defaults()); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod for outside breakdown, got %v", err)
	}
}

func TestSummarizePeriodUsesWindowWeeklyHours(t *testing.T) {
	start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	set := policy.Defaults()
	set.Windows = []policy.Window{{StartDate: start, EndDate: start.AddDate(0, 1, 0), StandardWeeklyHours: 52}}
	days := []Breakdown{{Date: start, TotalHours: 60, BasicHours: 12, OvertimeHours: 48}}

	got, err := SummarizePeriod(start, start.AddDate(0, 0, 6), days, set)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.StandardWeeklyHours != 52 || got.PayableOvertimeHours != 8 {
		t.Fatalf("expected 52h standard and 8h payable, got %+v", got)
	}
}
