package reports

import (
	"encoding/json"
	"time"
)

type JobRunFilter struct {
	JobType     string
	Status      string
	StartedFrom *time.Time
	StartedTo   *time.Time
}

type JobRun struct {
	ID          string         `json:"id"`
	JobType     string         `json:"jobType"`
	SubjectID   string         `json:"subjectId,omitempty"`
	Status      string         `json:"status"`
	Details     map[string]any `json:"details"`
	StartedAt   time.Time      `json:"startedAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}

// CategoryTotal aggregates one leave category across all users. Hour pools
// holding a non-numeric value are counted in InvalidPools and left out of
// AvailableHours.
type CategoryTotal struct {
	Category       string  `json:"category"`
	Users          int     `json:"users"`
	Granted        float64 `json:"granted"`
	Used           float64 `json:"used"`
	AvailableHours float64 `json:"availableHours"`
	InvalidPools   int     `json:"invalidPools"`
}

type LeaveSummary struct {
	PendingRequests  int             `json:"pendingRequests"`
	ApprovedRequests int             `json:"approvedRequests"`
	Categories       []CategoryTotal `json:"categories"`
}

// DecodeDetails unmarshals a stored details document, keeping unreadable
// payloads under "raw".
func DecodeDetails(raw []byte) map[string]any {
	if len(raw) == 0 {
		return map[string]any{}
	}
	details := map[string]any{}
	if err := json.Unmarshal(raw, &details); err != nil {
		return map[string]any{
			"raw": string(raw),
		}
	}
	return details
}
