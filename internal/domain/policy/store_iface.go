package policy

import (
	"context"
	"time"
)

// Loader reads the full policy configuration from its source of truth.
type Loader interface {
	Load(ctx context.Context) (Set, error)
}

// Cache keeps the last good snapshot shared between instances.
type Cache interface {
	GetJSON(ctx context.Context, key string, target any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}
