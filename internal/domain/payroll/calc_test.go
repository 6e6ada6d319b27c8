package payroll

import (
	"errors"
	"testing"

	"hrportal/internal/domain/worktime"
)

func TestComputePayroll(t *testing.T) {
	inputs := []InputLine{
		{Type: "earning", Amount: 200},
		{Type: "earning", Amount: 50},
		{Type: "deduction", Amount: 100},
	}

	gross, deductions, net := ComputePayroll(1000, inputs)
	if gross != 1250 {
		t.Fatalf("expected gross 1250, got %v", gross)
	}
	if deductions != 100 {
		t.Fatalf("expected deductions 100, got %v", deductions)
	}
	if net != 1150 {
		t.Fatalf("expected net 1150, got %v", net)
	}
}

func TestWorkTimeLines(t *testing.T) {
	summary := worktime.PeriodSummary{PayableOvertimeHours: 8}
	summary.NightHours = 2

	lines, err := WorkTimeLines(summary, Rates{HourlyRate: 20, OvertimeRate: 1.5, NightRate: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Code != CodeOvertime || lines[0].Amount != 240 {
		t.Fatalf("expected overtime 240, got %+v", lines[0])
	}
	if lines[1].Code != CodeNightDifferential || lines[1].Amount != 20 {
		t.Fatalf("expected night differential 20, got %+v", lines[1])
	}

	gross, _, _ := ComputePayroll(3000, lines)
	if gross != 3260 {
		t.Fatalf("expected gross 3260, got %v", gross)
	}
}

func TestOvertimePayZeroWhenNothingPayable(t *testing.T) {
	pay, err := OvertimePay(worktime.PeriodSummary{}, Rates{HourlyRate: 20, OvertimeRate: 1.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pay != 0 {
		t.Fatalf("expected 0, got %v", pay)
	}
}

func TestWorkTimeLinesRejectsNegativeRates(t *testing.T) {
	_, err := WorkTimeLines(worktime.PeriodSummary{}, Rates{HourlyRate: -1})
	if !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
}

func TestPeriodPay(t *testing.T) {
	summary := worktime.PeriodSummary{PayableOvertimeHours: 8}
	summary.NightHours = 2
	deductions := []InputLine{{Type: ElementTypeDeduction, Code: "meal_plan", Amount: 60}}

	st, err := PeriodPay(summary, Rates{HourlyRate: 20, OvertimeRate: 1.5, NightRate: 0.5}, 3000, deductions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.OvertimePay != 240 {
		t.Fatalf("expected overtime pay 240, got %v", st.OvertimePay)
	}
	if st.Gross != 3260 || st.Deductions != 60 || st.Net != 3200 {
		t.Fatalf("expected 3260/60/3200, got %v/%v/%v", st.Gross, st.Deductions, st.Net)
	}
	if len(st.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(st.Lines))
	}
}

func TestPeriodPayRejectsBadInputs(t *testing.T) {
	rates := Rates{HourlyRate: 20, OvertimeRate: 1.5}
	if _, err := PeriodPay(worktime.PeriodSummary{}, rates, -1, nil); !errors.Is(err, ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate for negative salary, got %v", err)
	}
	earning := []InputLine{{Type: ElementTypeEarning, Amount: 10}}
	if _, err := PeriodPay(worktime.PeriodSummary{}, rates, 0, earning); !errors.Is(err, ErrInvalidLine) {
		t.Fatalf("expected ErrInvalidLine for an earning passed as deduction, got %v", err)
	}
	negative := []InputLine{{Type: ElementTypeDeduction, Amount: -5}}
	if _, err := PeriodPay(worktime.PeriodSummary{}, rates, 0, negative); !errors.Is(err, ErrInvalidLine) {
		t.Fatalf("expected ErrInvalidLine for a negative deduction, got %v", err)
	}
}
