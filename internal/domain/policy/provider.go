package policy

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const cacheKey = "policy:snapshot"

// Provider hands out the current policy snapshot. It starts on Defaults and
// only replaces the snapshot after a successful load.
type Provider struct {
	loader  Loader
	cache   Cache
	ttl     time.Duration
	current atomic.Pointer[Set]
}

func NewProvider(loader Loader, cache Cache, ttl time.Duration) *Provider {
	return NewProviderWithDefaults(loader, cache, ttl, Defaults())
}

// NewProviderWithDefaults starts the provider on a caller supplied snapshot
// instead of the built-in defaults.
func NewProviderWithDefaults(loader Loader, cache Cache, ttl time.Duration, defaults Set) *Provider {
	p := &Provider{loader: loader, cache: cache, ttl: ttl}
	if defaults.Source == "" {
		defaults.Source = SourceDefaults
	}
	p.current.Store(&defaults)
	return p
}

func (p *Provider) Current() Set {
	return *p.current.Load()
}

// Reload reads the store, then the shared cache when the store is
// unreachable. When both fail the previous snapshot stays in place and the
// store error is returned.
func (p *Provider) Reload(ctx context.Context) (Set, error) {
	if p.loader == nil {
		return p.Current(), nil
	}

	set, err := p.loader.Load(ctx)
	if err == nil {
		p.current.Store(&set)
		if p.cache != nil {
			if cacheErr := p.cache.SetJSON(ctx, cacheKey, set, p.ttl); cacheErr != nil {
				slog.Warn("policy cache write failed", "err", cacheErr)
			}
		}
		return set, nil
	}
	slog.Warn("policy store unreachable", "err", err)

	if p.cache != nil {
		var cached Set
		found, cacheErr := p.cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr != nil {
			slog.Warn("policy cache read failed", "err", cacheErr)
		}
		if found {
			cached.Source = SourceCache
			p.current.Store(&cached)
			return cached, nil
		}
	}

	current := p.Current()
	slog.Warn("keeping current policy snapshot", "source", current.Source)
	return current, err
}
