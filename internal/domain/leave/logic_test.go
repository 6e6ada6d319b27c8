package leave

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"
)

func TestCalculateDays(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	days, err := CalculateDays(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 1 {
		t.Fatalf("expected 1 day, got %v", days)
	}

	end = time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	days, err = CalculateDays(start, end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 3 {
		t.Fatalf("expected 3 days, got %v", days)
	}
}

func TestCalculateDaysInvalid(t *testing.T) {
	start := time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 9, 0, 0, 0, 0, time.UTC)

	_, err := CalculateDays(start, end)
	if err == nil {
		t.Fatal("expected error for invalid range")
	}
}

func TestCalculateRequestDaysHalfDays(t *testing.T) {
	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)

	days, err := CalculateRequestDays(start, end, true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 1.5 {
		t.Fatalf("expected 1.5 days, got %v", days)
	}

	days, err = CalculateRequestDays(start, start, true, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if days != 0.5 {
		t.Fatalf("expected 0.5 days, got %v", days)
	}

	if _, err := CalculateRequestDays(start, start, true, true); err == nil {
		t.Fatal("expected error for two halves on one day")
	}
}

func TestCategoryAmount(t *testing.T) {
	if got := CategoryAnnual.Amount(2); got != 2 {
		t.Fatalf("expected 2 days, got %v", got)
	}
	if got := CategoryCompensatory.Amount(2); got != 16 {
		t.Fatalf("expected 16 hours, got %v", got)
	}
	if got := CategorySubstitute.Amount(0.5); got != 4 {
		t.Fatalf("expected 4 hours, got %v", got)
	}
	if CategorySick.Unit() != UnitDays || CategorySubstitute.Unit() != UnitHours {
		t.Fatal("unexpected units")
	}
}

func TestParseCategory(t *testing.T) {
	if c, ok := ParseCategory(" Annual "); !ok || c != CategoryAnnual {
		t.Fatalf("expected annual, got %q %v", c, ok)
	}
	if _, ok := ParseCategory("parental"); ok {
		t.Fatal("expected unknown category to be rejected")
	}
}

func TestNewRequestValidation(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	base := SubmitInput{
		UserID:    "u1",
		Category:  CategoryAnnual,
		StartDate: time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
	}

	r, err := NewRequest(base, "req-1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Days != 2 || r.Status != StatusPending || r.ID != "req-1" {
		t.Fatalf("unexpected request %+v", r)
	}

	cases := map[string]func(in *SubmitInput){
		"missing user":     func(in *SubmitInput) { in.UserID = "" },
		"unknown category": func(in *SubmitInput) { in.Category = "parental" },
		"reversed dates":   func(in *SubmitInput) { in.EndDate = in.StartDate.AddDate(0, 0, -1) },
		"days mismatch":    func(in *SubmitInput) { in.Days = 3 },
		"missing date":     func(in *SubmitInput) { in.EndDate = time.Time{} },
	}
	for name, mutate := range cases {
		in := base
		mutate(&in)
		if _, err := NewRequest(in, "req-x", now); !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected ErrValidation, got %v", name, err)
		}
	}

	in := base
	in.Days = 2
	if _, err := NewRequest(in, "req-2", now); err != nil {
		t.Fatalf("matching days should be accepted, got %v", err)
	}
}

func hours(v float64) *float64 {
	return &v
}

func TestCheckSufficient(t *testing.T) {
	annual := Request{Category: CategoryAnnual, Days: 2}
	if err := checkSufficient(Balance{Category: CategoryAnnual, Granted: 15, Used: 14}, annual); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if err := checkSufficient(Balance{Category: CategoryAnnual, Granted: 15, Used: 13}, annual); err != nil {
		t.Fatalf("expected exact remaining to pass, got %v", err)
	}

	comp := Request{Category: CategoryCompensatory, Days: 2}
	if err := checkSufficient(Balance{Category: CategoryCompensatory, AvailableHours: hours(10)}, comp); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if err := checkSufficient(Balance{Category: CategoryCompensatory}, comp); !errors.Is(err, ErrUninitializedBalance) {
		t.Fatalf("expected ErrUninitializedBalance, got %v", err)
	}
	if err := checkSufficient(Balance{Category: CategoryCompensatory, AvailableHours: hours(math.NaN())}, comp); !errors.Is(err, ErrInvalidBalance) {
		t.Fatalf("expected ErrInvalidBalance, got %v", err)
	}
	if err := checkSufficient(Balance{Category: CategoryCompensatory, AvailableHours: hours(-1)}, comp); !errors.Is(err, ErrInvalidBalance) {
		t.Fatalf("expected ErrInvalidBalance for negative pool, got %v", err)
	}
}

func TestConsumeAndRestore(t *testing.T) {
	annual := Request{Category: CategoryAnnual, Days: 1}
	b := consume(Balance{Category: CategoryAnnual, Granted: 15, Used: 3}, annual)
	if b.Used != 4 {
		t.Fatalf("expected used 4, got %v", b.Used)
	}
	b, err := restore(b, annual)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Used != 3 {
		t.Fatalf("expected used 3, got %v", b.Used)
	}
	if floored, _ := restore(Balance{Category: CategoryAnnual, Used: 0.5}, annual); floored.Used != 0 {
		t.Fatal("expected used to floor at 0")
	}

	sub := Request{Category: CategorySubstitute, Days: 1}
	h := consume(Balance{Category: CategorySubstitute, AvailableHours: hours(5)}, sub)
	if *h.AvailableHours != 0 {
		t.Fatalf("expected hours to floor at 0, got %v", *h.AvailableHours)
	}
	h, err = restore(Balance{Category: CategorySubstitute, AvailableHours: hours(4)}, sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *h.AvailableHours != 12 {
		t.Fatalf("expected 12 hours, got %v", *h.AvailableHours)
	}
}

func TestRestoreRejectsUnusableHourPool(t *testing.T) {
	comp := Request{Category: CategoryCompensatory, Days: 1}
	if _, err := restore(Balance{Category: CategoryCompensatory, AvailableHours: hours(math.NaN())}, comp); !errors.Is(err, ErrInvalidBalance) {
		t.Fatalf("expected ErrInvalidBalance, got %v", err)
	}
	if _, err := restore(Balance{Category: CategoryCompensatory, AvailableHours: hours(math.Inf(1))}, comp); !errors.Is(err, ErrInvalidBalance) {
		t.Fatalf("expected ErrInvalidBalance for infinite pool, got %v", err)
	}
	if _, err := restore(Balance{Category: CategoryCompensatory}, comp); !errors.Is(err, ErrUninitializedBalance) {
		t.Fatalf("expected ErrUninitializedBalance, got %v", err)
	}
}

func TestCreditRespectsCap(t *testing.T) {
	b, credited, err := credit(Balance{Category: CategorySubstitute}, 9.5, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *b.AvailableHours != 9.5 || credited != 9.5 {
		t.Fatalf("expected 9.5 credited, got %v %v", *b.AvailableHours, credited)
	}

	b, credited, _ = credit(Balance{Category: CategorySubstitute, AvailableHours: hours(36)}, 9.5, 40)
	if *b.AvailableHours != 40 || credited != 4 {
		t.Fatalf("expected cap at 40 with 4 credited, got %v %v", *b.AvailableHours, credited)
	}

	b, credited, _ = credit(Balance{Category: CategorySubstitute, AvailableHours: hours(45)}, 9.5, 40)
	if *b.AvailableHours != 45 || credited != 0 {
		t.Fatalf("expected pool above cap untouched, got %v %v", *b.AvailableHours, credited)
	}

	if _, _, err := credit(Balance{Category: CategorySubstitute, AvailableHours: hours(math.Inf(1))}, 1, 0); !errors.Is(err, ErrInvalidBalance) {
		t.Fatalf("expected ErrInvalidBalance, got %v", err)
	}
}

func TestCheckTransition(t *testing.T) {
	legal := [][2]string{
		{StatusPending, StatusApproved},
		{StatusPending, StatusRejected},
		{StatusPending, StatusCancelled},
		{StatusApproved, StatusCancelled},
	}
	for _, tr := range legal {
		if err := checkTransition(tr[0], tr[1]); err != nil {
			t.Fatalf("%s -> %s should be legal, got %v", tr[0], tr[1], err)
		}
	}
	illegal := [][2]string{
		{StatusApproved, StatusApproved},
		{StatusApproved, StatusRejected},
		{StatusRejected, StatusCancelled},
		{StatusCancelled, StatusApproved},
	}
	for _, tr := range illegal {
		if err := checkTransition(tr[0], tr[1]); !errors.Is(err, ErrAlreadyProcessed) {
			t.Fatalf("%s -> %s should be AlreadyProcessed, got %v", tr[0], tr[1], err)
		}
	}
}

func TestBalanceMarshalJSON(t *testing.T) {
	payload, err := json.Marshal(Balance{UserID: "u1", Category: CategorySubstitute, AvailableHours: hours(math.NaN())})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(payload), `"invalid":true`) || !strings.Contains(string(payload), `"availableHours":null`) {
		t.Fatalf("unexpected payload %s", payload)
	}

	payload, _ = json.Marshal(Balance{UserID: "u1", Category: CategoryAnnual, Granted: 15, Used: 4})
	if !strings.Contains(string(payload), `"remaining":11`) {
		t.Fatalf("expected remaining in payload, got %s", payload)
	}
}
