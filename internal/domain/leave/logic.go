package leave

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CalculateDays returns inclusive day count between start and end.
func CalculateDays(start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, errors.New("end date before start date")
	}
	return end.Sub(start).Hours()/24 + 1, nil
}

// CalculateRequestDays returns inclusive leave day count with optional half-day start/end boundaries.
func CalculateRequestDays(start, end time.Time, startHalf, endHalf bool) (float64, error) {
	days, err := CalculateDays(start, end)
	if err != nil {
		return 0, err
	}

	sameDay := start.Equal(end)
	if sameDay && startHalf && endHalf {
		return 0, errors.New("invalid half-day range")
	}

	if startHalf {
		days -= 0.5
	}
	if endHalf {
		days -= 0.5
	}
	if days <= 0 {
		return 0, errors.New("invalid half-day range")
	}
	return days, nil
}

func ParseCategory(value string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(value)))
	return c, c.Valid()
}

func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// IsHours reports whether the category is tracked as an hour pool rather than granted/used days.
func (c Category) IsHours() bool {
	return c == CategorySubstitute || c == CategoryCompensatory
}

func (c Category) Unit() string {
	if c.IsHours() {
		return UnitHours
	}
	return UnitDays
}

// Amount converts a request's day count into the category's unit.
func (c Category) Amount(days float64) float64 {
	if c.IsHours() {
		return decimal.NewFromFloat(days).Mul(decimal.NewFromInt(HoursPerDay)).InexactFloat64()
	}
	return days
}

// NewRequest validates input and builds a pending request. The day count is
// always derived from the dates; a caller supplied count must agree with it.
func NewRequest(in SubmitInput, id string, now time.Time) (Request, error) {
	if strings.TrimSpace(in.UserID) == "" {
		return Request{}, newError(ErrValidation, "userId is required")
	}
	if !in.Category.Valid() {
		return Request{}, newError(ErrValidation, "unknown leave category %q", in.Category)
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return Request{}, newError(ErrValidation, "startDate and endDate are required")
	}
	start, end := dateOnly(in.StartDate), dateOnly(in.EndDate)
	days, err := CalculateRequestDays(start, end, in.StartHalf, in.EndHalf)
	if err != nil {
		return Request{}, newError(ErrValidation, "%s", err.Error())
	}
	if in.Days != 0 && !decimal.NewFromFloat(in.Days).Equal(decimal.NewFromFloat(days)) {
		return Request{}, newError(ErrValidation, "days %.1f does not match date range (%.1f)", in.Days, days)
	}
	return Request{
		ID:        id,
		UserID:    in.UserID,
		Category:  in.Category,
		StartDate: start,
		EndDate:   end,
		StartHalf: in.StartHalf,
		EndHalf:   in.EndHalf,
		Days:      days,
		Reason:    strings.TrimSpace(in.Reason),
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func checkTransition(from, to string) error {
	if slices.Contains(transitions[from], to) {
		return nil
	}
	return newError(ErrAlreadyProcessed, "request is %s and cannot become %s", from, to)
}

// availableHours reads an hour-category pool, rejecting absent or non-numeric values.
func availableHours(b Balance) (float64, error) {
	if b.AvailableHours == nil {
		return 0, newError(ErrUninitializedBalance, "%s balance for user %s has not been initialized", b.Category, b.UserID)
	}
	hours := *b.AvailableHours
	if !finite(hours) || hours < 0 {
		return 0, newError(ErrInvalidBalance, "%s balance for user %s is not a valid amount", b.Category, b.UserID)
	}
	return hours, nil
}

// checkSufficient fails when the balance cannot cover the request.
func checkSufficient(b Balance, r Request) error {
	need := r.Category.Amount(r.Days)
	if r.Category.IsHours() {
		hours, err := availableHours(b)
		if err != nil {
			return err
		}
		if hours < need {
			return newError(ErrInsufficientBalance, "requested %.2f hours of %s leave but only %.2f available", need, r.Category, hours)
		}
		return nil
	}
	if !finite(b.Granted) || !finite(b.Used) {
		return newError(ErrInvalidBalance, "%s balance for user %s is not a valid amount", b.Category, b.UserID)
	}
	if remaining := b.Remaining(); remaining < need {
		return newError(ErrInsufficientBalance, "requested %.1f days of %s leave but only %.1f remaining", need, r.Category, remaining)
	}
	return nil
}

// consume deducts an approved request. Hour pools never go below zero.
func consume(b Balance, r Request) Balance {
	amount := decimal.NewFromFloat(r.Category.Amount(r.Days))
	if r.Category.IsHours() {
		left := decimal.NewFromFloat(*b.AvailableHours).Sub(amount)
		left = decimal.Max(left, decimal.Zero)
		hours := left.Round(2).InexactFloat64()
		b.AvailableHours = &hours
		return b
	}
	b.Used = decimal.NewFromFloat(b.Used).Add(amount).Round(2).InexactFloat64()
	return b
}

// restore returns a cancelled approval to the balance. Used days never go
// below zero. A missing or corrupt hour pool is reported, not replaced.
func restore(b Balance, r Request) (Balance, error) {
	amount := decimal.NewFromFloat(r.Category.Amount(r.Days))
	if r.Category.IsHours() {
		current, err := availableHours(b)
		if err != nil {
			return b, err
		}
		hours := decimal.NewFromFloat(current).Add(amount).Round(2).InexactFloat64()
		b.AvailableHours = &hours
		return b, nil
	}
	if !finite(b.Used) {
		return b, newError(ErrInvalidBalance, "%s balance for user %s is not a valid amount", b.Category, b.UserID)
	}
	used := decimal.NewFromFloat(b.Used).Sub(amount)
	b.Used = decimal.Max(used, decimal.Zero).Round(2).InexactFloat64()
	return b, nil
}

// grant adds amount to the category's pool. An uninitialized hour pool starts at zero.
func grant(b Balance, amount float64) (Balance, error) {
	if !b.Category.IsHours() {
		b.Granted = decimal.NewFromFloat(b.Granted).Add(decimal.NewFromFloat(amount)).Round(2).InexactFloat64()
		return b, nil
	}
	current, err := hoursOrZero(b)
	if err != nil {
		return b, err
	}
	hours := current.Add(decimal.NewFromFloat(amount)).Round(2).InexactFloat64()
	b.AvailableHours = &hours
	return b, nil
}

// credit adds accrued hours without lifting the pool past capHours. A
// non-positive cap means uncapped; a pool already above the cap is left alone.
func credit(b Balance, hours, capHours float64) (Balance, float64, error) {
	current, err := hoursOrZero(b)
	if err != nil {
		return b, 0, err
	}
	next := current.Add(decimal.NewFromFloat(hours))
	if capHours > 0 {
		limit := decimal.NewFromFloat(capHours)
		if current.GreaterThanOrEqual(limit) {
			next = current
		} else {
			next = decimal.Min(next, limit)
		}
	}
	credited := next.Sub(current).Round(2).InexactFloat64()
	total := next.Round(2).InexactFloat64()
	b.AvailableHours = &total
	return b, credited, nil
}

func hoursOrZero(b Balance) (decimal.Decimal, error) {
	if b.AvailableHours == nil {
		return decimal.Zero, nil
	}
	hours, err := availableHours(b)
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(hours), nil
}

func validateGrant(userID string, category Category, amount float64) error {
	if strings.TrimSpace(userID) == "" {
		return newError(ErrValidation, "userId is required")
	}
	if !category.Valid() {
		return newError(ErrValidation, "unknown leave category %q", category)
	}
	if !finite(amount) || amount <= 0 {
		return newError(ErrValidation, "amount must be a positive number")
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
