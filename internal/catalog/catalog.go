// Package catalog serves item definitions with a short TTL cache so
// every message in a counting flow does not hit the database.
package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/ladiossato/k2-inventory/internal/model"
)

// Lister is the store surface the catalog needs.
type Lister interface {
	ListByLocation(ctx context.Context, loc model.Location) ([]model.Item, error)
}

// Catalog caches per-location item lists.
type Catalog struct {
	store Lister
	ttl   time.Duration

	mu    sync.Mutex
	cache map[model.Location]cachedItems
	now   func() time.Time
}

type cachedItems struct {
	items     []model.Item
	fetchedAt time.Time
}

// New creates a catalog with the given cache TTL.
func New(store Lister, ttl time.Duration) *Catalog {
	return &Catalog{
		store: store,
		ttl:   ttl,
		cache: make(map[model.Location]cachedItems),
		now:   time.Now,
	}
}

// ItemsForLocation returns the active items at a location, cached for
// the TTL. A store failure with a warm cache returns the stale list.
func (c *Catalog) ItemsForLocation(ctx context.Context, loc model.Location) ([]model.Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if entry, ok := c.cache[loc]; ok && now.Sub(entry.fetchedAt) < c.ttl {
		return entry.items, nil
	}

	items, err := c.store.ListByLocation(ctx, loc)
	if err != nil {
		if entry, ok := c.cache[loc]; ok {
			return entry.items, nil
		}
		return nil, err
	}

	c.cache[loc] = cachedItems{items: items, fetchedAt: now}
	return items, nil
}

// Invalidate drops the cached list for a location.
func (c *Catalog) Invalidate(loc model.Location) {
	c.mu.Lock()
	delete(c.cache, loc)
	c.mu.Unlock()
}
