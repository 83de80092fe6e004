// Package notation maps move notation to compact surrogate ids and back.
//
// Both directions are read-through caches over a Store and live for the whole
// import run. The set of distinct notations is small, so nothing is evicted.
package notation

import (
	"context"
	"strconv"

	"github.com/tphakala/openingbook/internal/errors"
	"github.com/tphakala/openingbook/internal/observability/metrics"
)

// Store is the persistent side of the cache
type Store interface {
	// UpsertGetID inserts text if absent and returns its id
	UpsertGetID(ctx context.Context, text string) (uint, error)
	// LookupByID returns the text of id; found is false for unknown ids
	LookupByID(ctx context.Context, id uint) (text string, found bool, err error)
}

// DirectionStats describes one direction of the cache
type DirectionStats struct {
	Size   int
	Hits   uint64
	Misses uint64
}

// Stats describes both directions
type Stats struct {
	Forward DirectionStats
	Reverse DirectionStats
}

// Cache is the notation id cache. It is not safe for concurrent use.
type Cache struct {
	forward *lookup[string, uint]
	reverse *lookup[uint, string]
}

// New returns a cache over store. A nil recorder disables metrics.
func New(store Store, recorder metrics.CacheRecorder) *Cache {
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}

	upsert := func(ctx context.Context, text string) (uint, bool, error) {
		id, err := store.UpsertGetID(ctx, text)
		if err != nil {
			return 0, false, err
		}
		return id, true, nil
	}

	return &Cache{
		forward: newLookup(metrics.DirectionForward, identity, upsert, recorder),
		reverse: newLookup(metrics.DirectionReverse, formatID, store.LookupByID, recorder),
	}
}

// GetOrCreate returns the id of text, creating it in the store on first use
func (c *Cache) GetOrCreate(ctx context.Context, text string) (uint, error) {
	id, _, err := c.forward.get(ctx, text)
	if err != nil {
		return 0, errors.New(err).
			Component("notation").
			Category(errors.CategoryDatabase).
			Context("notation", text).
			Build()
	}
	return id, nil
}

// ReverseLookup returns the text of id. An unknown id gives found=false.
func (c *Cache) ReverseLookup(ctx context.Context, id uint) (text string, found bool, err error) {
	text, found, err = c.reverse.get(ctx, id)
	if err != nil {
		return "", false, errors.New(err).
			Component("notation").
			Category(errors.CategoryDatabase).
			Context("id", id).
			Build()
	}
	return text, found, nil
}

// Stats returns size and hit/miss counts of both directions
func (c *Cache) Stats() Stats {
	return Stats{
		Forward: c.forward.stats(),
		Reverse: c.reverse.stats(),
	}
}

func identity(s string) string { return s }

func formatID(id uint) string { return strconv.FormatUint(uint64(id), 10) }
