package calendar

import "context"

type StoreAPI interface {
	InsertEvent(ctx context.Context, e Event) (bool, error)
	ListEvents(ctx context.Context, userID string) ([]Event, error)
}
