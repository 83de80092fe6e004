package notation

import (
	"context"

	"github.com/patrickmn/go-cache"

	"github.com/tphakala/openingbook/internal/observability/metrics"
)

// fetchFunc resolves a key that is not cached. found=false means the key has
// no value in the backing store.
type fetchFunc[K comparable, V any] func(ctx context.Context, key K) (value V, found bool, err error)

// lookup is a read-through cache over a backing fetch. Entries never expire.
type lookup[K comparable, V any] struct {
	direction string
	items     *cache.Cache
	keyString func(K) string
	fetch     fetchFunc[K, V]
	recorder  metrics.CacheRecorder

	hits   uint64
	misses uint64
}

func newLookup[K comparable, V any](direction string, keyString func(K) string, fetch fetchFunc[K, V], recorder metrics.CacheRecorder) *lookup[K, V] {
	return &lookup[K, V]{
		direction: direction,
		items:     cache.New(cache.NoExpiration, 0),
		keyString: keyString,
		fetch:     fetch,
		recorder:  recorder,
	}
}

// get returns the cached value or fetches and caches it. Absent values are
// not cached, so a later insert becomes visible.
func (l *lookup[K, V]) get(ctx context.Context, key K) (V, bool, error) {
	k := l.keyString(key)
	if v, ok := l.items.Get(k); ok {
		l.hits++
		l.recorder.RecordCacheHit(l.direction)
		return v.(V), true, nil
	}

	l.misses++
	l.recorder.RecordCacheMiss(l.direction)

	v, found, err := l.fetch(ctx, key)
	if err != nil || !found {
		var zero V
		return zero, false, err
	}

	l.items.Set(k, v, cache.NoExpiration)
	l.recorder.SetCacheSize(l.direction, l.items.ItemCount())
	return v, true, nil
}

func (l *lookup[K, V]) stats() DirectionStats {
	return DirectionStats{
		Size:   l.items.ItemCount(),
		Hits:   l.hits,
		Misses: l.misses,
	}
}
