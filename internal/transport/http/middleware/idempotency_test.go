package middleware

import (
	"context"
	"testing"
)

func TestRequestHashDeterministic(t *testing.T) {
	hash1 := RequestHash([]byte("payload"))
	hash2 := RequestHash([]byte("payload"))
	hash3 := RequestHash([]byte("other"))

	if hash1 != hash2 {
		t.Fatal("expected deterministic hash")
	}
	if hash1 == hash3 {
		t.Fatal("expected different hash for different payload")
	}
}

func TestNilIdempotencyStoreIsDisabled(t *testing.T) {
	var store *IdempotencyStore
	_, found, err := store.Check(context.Background(), "u1", "/leave/requests", "k1", RequestHash([]byte("x")))
	if err != nil || found {
		t.Fatalf("expected disabled store, got found=%v err=%v", found, err)
	}
	if err := store.Save(context.Background(), "u1", "/leave/requests", "k1", "h", []byte(`{}`)); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
}
