package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	store StoreAPI
}

func New(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Record(ctx context.Context, actorID, action, entityType, entityID, requestID, ip string, before, after any) error {
	evt := Event{
		ID:         uuid.NewString(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		RequestID:  requestID,
		IP:         ip,
		CreatedAt:  time.Now().UTC(),
	}
	if before != nil {
		payload, err := json.Marshal(before)
		if err != nil {
			return err
		}
		evt.Before = payload
	}
	if after != nil {
		payload, err := json.Marshal(after)
		if err != nil {
			return err
		}
		evt.After = payload
	}
	return s.store.InsertEvent(ctx, evt)
}

func (s *Service) List(ctx context.Context, filter Filter, limit, offset int) ([]Event, int, error) {
	return s.store.ListEvents(ctx, filter, limit, offset)
}
