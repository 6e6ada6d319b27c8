package audit

import (
	"context"
	"testing"
)

type memoryStore struct {
	events []Event
}

func (m *memoryStore) InsertEvent(ctx context.Context, evt Event) error {
	m.events = append(m.events, evt)
	return nil
}

func (m *memoryStore) ListEvents(ctx context.Context, filter Filter, limit, offset int) ([]Event, int, error) {
	return m.events, len(m.events), nil
}

func TestRecordMarshalsSnapshots(t *testing.T) {
	store := &memoryStore{}
	svc := New(store)

	before := map[string]any{"status": "pending"}
	after := map[string]any{"status": "approved"}
	if err := svc.Record(context.Background(), "hr-1", ActionLeaveApprove, EntityLeaveRequest, "req-1", "rid", "127.0.0.1", before, after); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(store.events))
	}
	evt := store.events[0]
	if evt.ID == "" {
		t.Fatal("expected generated id")
	}
	if string(evt.Before) != `{"status":"pending"}` || string(evt.After) != `{"status":"approved"}` {
		t.Fatalf("unexpected snapshots %s %s", evt.Before, evt.After)
	}
}

func TestRecordWithoutSnapshots(t *testing.T) {
	store := &memoryStore{}
	if err := New(store).Record(context.Background(), "u1", ActionLeaveSubmit, EntityLeaveRequest, "req-2", "", "", nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.events[0].Before != nil || store.events[0].After != nil {
		t.Fatal("expected empty snapshots")
	}
}
