package leave

import (
	"encoding/json"
	"math"
	"time"
)

// Balance is one user's balance for one category. Day categories use
// Granted and Used; hour categories use AvailableHours only, where nil means
// the balance was never initialized.
type Balance struct {
	UserID         string    `json:"userId"`
	Category       Category  `json:"category"`
	Granted        float64   `json:"granted"`
	Used           float64   `json:"used"`
	AvailableHours *float64  `json:"availableHours"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (b Balance) Remaining() float64 {
	return b.Granted - b.Used
}

// MarshalJSON reports a non-numeric stored value as invalid instead of failing the encode.
func (b Balance) MarshalJSON() ([]byte, error) {
	type view Balance
	out := struct {
		view
		Remaining *float64 `json:"remaining,omitempty"`
		Invalid   bool     `json:"invalid,omitempty"`
	}{view: view(b)}
	if b.Category.IsHours() {
		if b.AvailableHours != nil && !finite(*b.AvailableHours) {
			out.AvailableHours = nil
			out.Invalid = true
		}
	} else {
		remaining := b.Remaining()
		out.Remaining = &remaining
	}
	return json.Marshal(out)
}

type Request struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	Category     Category   `json:"category"`
	StartDate    time.Time  `json:"startDate"`
	EndDate      time.Time  `json:"endDate"`
	StartHalf    bool       `json:"startHalf"`
	EndHalf      bool       `json:"endHalf"`
	Days         float64    `json:"days"`
	Reason       string     `json:"reason,omitempty"`
	Status       string     `json:"status"`
	ApproverID   string     `json:"approverId,omitempty"`
	DecisionNote string     `json:"decisionNote,omitempty"`
	DecidedAt    *time.Time `json:"decidedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type SubmitInput struct {
	UserID    string
	Category  Category
	StartDate time.Time
	EndDate   time.Time
	StartHalf bool
	EndHalf   bool
	// Days is optional; when set it must match the amount derived from the dates.
	Days   float64
	Reason string
}

type Decision struct {
	RequestID string
	ActorID   string
	Note      string
	At        time.Time
}

// Transition is the outcome of a lifecycle event. Amount is what was applied
// to the balance in Unit, zero when the balance was untouched.
type Transition struct {
	Request Request  `json:"request"`
	From    string   `json:"from"`
	Balance *Balance `json:"balance,omitempty"`
	Amount  float64  `json:"amount"`
	Unit    string   `json:"unit"`
}

// AccrualCredit credits hours earned by weekend work. Credits are unique per user, date and category.
type AccrualCredit struct {
	UserID   string    `json:"userId"`
	WorkDate time.Time `json:"workDate"`
	Category Category  `json:"category"`
	Hours    float64   `json:"hours"`
}

type AccrualResult struct {
	Credit    AccrualCredit `json:"credit"`
	Balance   *Balance      `json:"balance,omitempty"`
	Duplicate bool          `json:"duplicate"`
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
