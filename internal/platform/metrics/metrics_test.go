package metrics

import (
	"errors"
	"testing"
	"time"
)

func TestRecordRequests(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(500, 30*time.Millisecond)
	c.Record(429, 0)

	snap := c.Snapshot()
	if snap["requestsTotal"].(uint64) != 3 {
		t.Fatalf("expected 3 requests, got %v", snap["requestsTotal"])
	}
	if snap["errorsTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 error, got %v", snap["errorsTotal"])
	}
	if snap["rateLimitedTotal"].(uint64) != 1 {
		t.Fatalf("expected 1 rate limited, got %v", snap["rateLimitedTotal"])
	}
	if snap["avgDurationMs"].(float64) != 40.0/3 {
		t.Fatalf("unexpected average %v", snap["avgDurationMs"])
	}
}

func TestRecordLeaveMutations(t *testing.T) {
	c := New()
	c.SetLeaveMode("fallback")
	c.RecordLeaveMutation("fallback", "approve", nil)
	c.RecordLeaveMutation("fallback", "approve", errors.New("insufficient"))
	c.RecordLeaveMutation("atomic", "cancel", nil)

	snap := c.Snapshot()
	if snap["leaveMode"] != "fallback" {
		t.Fatalf("expected fallback mode, got %v", snap["leaveMode"])
	}
	if snap["leaveMutationsFallback"].(uint64) != 2 || snap["leaveMutationsAtomic"].(uint64) != 1 {
		t.Fatalf("unexpected mode counts %v %v", snap["leaveMutationsFallback"], snap["leaveMutationsAtomic"])
	}
	if snap["leaveMutationFailures"].(uint64) != 1 {
		t.Fatalf("expected 1 failure, got %v", snap["leaveMutationFailures"])
	}
	if snap["leaveMutationsByOp"].(map[string]uint64)["fallback.approve"] != 2 {
		t.Fatalf("unexpected per-op counts %v", snap["leaveMutationsByOp"])
	}
}
