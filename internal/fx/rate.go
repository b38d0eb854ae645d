// Package fx provides the foreign-exchange rate collaborator: a pluggable
// source plus a per-run memo so every margin computed in one run uses one
// consistent rate.
package fx

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/zhehaowang/sneaky/internal/domain"
)

// RateFunc adapts a plain function into a domain.FXSource.
type RateFunc func(ctx context.Context, from, to string) (float64, error)

// Rate implements domain.FXSource.
func (f RateFunc) Rate(ctx context.Context, from, to string) (float64, error) {
	return f(ctx, from, to)
}

// Static returns a source serving fixed rates from a "FROM/TO" keyed map.
// Useful for tests and offline runs.
func Static(rates map[string]float64) domain.FXSource {
	return RateFunc(func(_ context.Context, from, to string) (float64, error) {
		if from == to {
			return 1, nil
		}
		rate, ok := rates[from+"/"+to]
		if !ok {
			return 0, fmt.Errorf("fx: no static rate %s/%s: %w", from, to, domain.ErrNotFound)
		}
		return rate, nil
	})
}

// Memo wraps a source with a per-run memo. The first lookup of each currency
// pair hits the source; later lookups return the memoized rate, guaranteeing
// rate consistency within the run. Safe for concurrent use.
type Memo struct {
	source domain.FXSource

	mu    sync.Mutex
	rates map[string]float64
}

// NewMemo creates a Memo over the given source.
func NewMemo(source domain.FXSource) *Memo {
	return &Memo{source: source, rates: make(map[string]float64)}
}

// Rate implements domain.FXSource.
func (m *Memo) Rate(ctx context.Context, from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}
	key := from + "/" + to

	m.mu.Lock()
	if rate, ok := m.rates[key]; ok {
		m.mu.Unlock()
		return rate, nil
	}
	m.mu.Unlock()

	rate, err := m.source.Rate(ctx, from, to)
	if err != nil {
		return 0, err
	}

	m.mu.Lock()
	// First writer wins so concurrent callers observe one rate.
	if cached, ok := m.rates[key]; ok {
		rate = cached
	} else {
		m.rates[key] = rate
	}
	m.mu.Unlock()
	return rate, nil
}

// Cached layers a cross-run domain.RateCache under a source: cache hits skip
// the source, misses consult it and backfill the cache. Cache write failures
// are non-fatal.
type Cached struct {
	source domain.FXSource
	cache  domain.RateCache
}

// NewCached creates a Cached source.
func NewCached(source domain.FXSource, cache domain.RateCache) *Cached {
	return &Cached{source: source, cache: cache}
}

// Rate implements domain.FXSource.
func (c *Cached) Rate(ctx context.Context, from, to string) (float64, error) {
	if from == to {
		return 1, nil
	}
	if rate, err := c.cache.GetRate(ctx, from, to); err == nil {
		return rate, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return 0, fmt.Errorf("fx: rate cache: %w", err)
	}

	rate, err := c.source.Rate(ctx, from, to)
	if err != nil {
		return 0, err
	}
	_ = c.cache.SetRate(ctx, from, to, rate)
	return rate, nil
}
