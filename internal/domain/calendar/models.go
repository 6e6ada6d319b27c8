package calendar

import "time"

const (
	ActionCreate = "create"
	ActionRemove = "remove"
)

// Event is a leave period handed to the calendar integration. SourceID and
// Action together identify it, so a repeated hand-off is ignored.
type Event struct {
	ID        string    `json:"id"`
	SourceID  string    `json:"sourceId"`
	Action    string    `json:"action"`
	UserID    string    `json:"userId"`
	Category  string    `json:"category"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Amount    float64   `json:"amount"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"createdAt"`
}
