package assets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"statement-pdf/internal/observability/metrics"
	statement "statement-pdf/internal/statement/domain"
)

// Source is a named store in a chain. The name labels fetch metrics.
type Source struct {
	Name  string
	Store statement.AssetStore
}

// ChainStore asks each source in order and returns the first hit.
// A not-found answer moves on to the next source; any other error stops.
type ChainStore struct {
	sources []Source
}

// NewChainStore constructs a chain, skipping nil stores.
func NewChainStore(sources ...Source) (*ChainStore, error) {
	kept := make([]Source, 0, len(sources))
	for _, src := range sources {
		if src.Store != nil {
			kept = append(kept, src)
		}
	}
	if len(kept) == 0 {
		return nil, errors.New("chain store: no sources")
	}
	return &ChainStore{sources: kept}, nil
}

// Fetch returns the first source's bytes for key.
func (c *ChainStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	for _, src := range c.sources {
		data, err := src.Store.Fetch(ctx, key)
		switch {
		case err == nil && len(data) > 0:
			metrics.IncAssetFetch(src.Name, metrics.ResultSuccess)
			return data, nil
		case err == nil, errors.Is(err, statement.ErrAssetNotFound):
			metrics.IncAssetFetch(src.Name, metrics.ResultNotFound)
		default:
			metrics.IncAssetFetch(src.Name, metrics.ResultError)
			return nil, fmt.Errorf("asset source %s: %w", src.Name, err)
		}
	}
	return nil, &statement.AssetNotFoundError{Key: key}
}

// CachedStore memoizes successful fetches from the wrapped store. Misses are
// not cached, so an asset uploaded later is picked up.
type CachedStore struct {
	next statement.AssetStore

	mu    sync.RWMutex
	items map[string][]byte
}

// NewCachedStore wraps next.
func NewCachedStore(next statement.AssetStore) (*CachedStore, error) {
	if next == nil {
		return nil, errors.New("cached store: nil store")
	}
	return &CachedStore{next: next, items: make(map[string][]byte)}, nil
}

// Fetch serves from memory when possible.
func (c *CachedStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	data, ok := c.items[key]
	c.mu.RUnlock()
	if ok {
		return data, nil
	}
	data, err := c.next.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.items[key] = data
	c.mu.Unlock()
	return data, nil
}

// Forget drops a cached key.
func (c *CachedStore) Forget(key string) {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
}
