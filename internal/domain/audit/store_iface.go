package audit

import "context"

type StoreAPI interface {
	InsertEvent(ctx context.Context, evt Event) error
	ListEvents(ctx context.Context, filter Filter, limit, offset int) ([]Event, int, error)
}
