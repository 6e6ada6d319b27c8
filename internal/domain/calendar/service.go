package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	store StoreAPI
}

func New(store StoreAPI) *Service {
	return &Service{store: store}
}

// Handoff queues e for the calendar integration.
func (s *Service) Handoff(ctx context.Context, e Event) error {
	if e.SourceID == "" || e.UserID == "" {
		return fmt.Errorf("%w: sourceId and userId are required", ErrInvalidEvent)
	}
	if e.EndDate.Before(e.StartDate) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidEvent)
	}
	if e.Action == "" {
		e.Action = ActionCreate
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	inserted, err := s.store.InsertEvent(ctx, e)
	if err != nil {
		return err
	}
	if !inserted {
		slog.Info("calendar handoff already recorded", "sourceId", e.SourceID, "action", e.Action)
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Event, error) {
	return s.store.ListEvents(ctx, userID)
}
