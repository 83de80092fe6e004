package notation

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/openingbook/internal/observability/metrics"
)

// memStore is an in-memory Store that counts calls
type memStore struct {
	ids     map[string]uint
	texts   map[uint]string
	upserts int
	lookups int
	fail    error
}

func newMemStore() *memStore {
	return &memStore{ids: map[string]uint{}, texts: map[uint]string{}}
}

func (m *memStore) UpsertGetID(_ context.Context, text string) (uint, error) {
	m.upserts++
	if m.fail != nil {
		return 0, m.fail
	}
	if id, ok := m.ids[text]; ok {
		return id, nil
	}
	id := uint(len(m.ids) + 1)
	m.ids[text] = id
	m.texts[id] = text
	return id, nil
}

func (m *memStore) LookupByID(_ context.Context, id uint) (string, bool, error) {
	m.lookups++
	if m.fail != nil {
		return "", false, m.fail
	}
	text, ok := m.texts[id]
	return text, ok, nil
}

func TestGetOrCreateHitsOnRepeat(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()
	c := New(store, nil)

	a, err := c.GetOrCreate(ctx, "e4")
	require.NoError(t, err)
	before := c.Stats().Forward.Hits

	b, err := c.GetOrCreate(ctx, "Nf3")
	require.NoError(t, err)
	again, err := c.GetOrCreate(ctx, "e4")
	require.NoError(t, err)

	assert.Equal(t, a, again)
	assert.NotEqual(t, a, b)
	assert.Equal(t, before+1, c.Stats().Forward.Hits)
	assert.Equal(t, uint64(2), c.Stats().Forward.Misses)
	assert.Equal(t, 2, c.Stats().Forward.Size)
	assert.Equal(t, 2, store.upserts)
}

func TestReverseLookupIsIndependent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()
	c := New(store, nil)

	id, err := c.GetOrCreate(ctx, "Bb5")
	require.NoError(t, err)

	text, found, err := c.ReverseLookup(ctx, id)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Bb5", text)
	assert.Equal(t, uint64(1), c.Stats().Reverse.Misses)

	_, _, err = c.ReverseLookup(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), c.Stats().Reverse.Hits)
	assert.Equal(t, 1, store.lookups)
	assert.Equal(t, uint64(0), c.Stats().Forward.Hits)
}

func TestReverseLookupUnknownID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()
	c := New(store, nil)

	_, found, err := c.ReverseLookup(ctx, 42)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, c.Stats().Reverse.Size)

	// absent ids are not cached
	_, _ = store.UpsertGetID(ctx, "a4")
	text, found, err := c.ReverseLookup(ctx, 1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "a4", text)
}

func TestStoreErrorsAreNotCached(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newMemStore()
	store.fail = stderrors.New("connection reset")
	c := New(store, nil)

	_, err := c.GetOrCreate(ctx, "e4")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.fail)

	store.fail = nil
	id, err := c.GetOrCreate(ctx, "e4")
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Equal(t, uint64(2), c.Stats().Forward.Misses)
}

func TestCacheReportsToPrometheus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m, err := metrics.NewNotationMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	c := New(newMemStore(), m)

	for _, text := range []string{"e4", "Nf3", "e4", "e4"} {
		_, err := c.GetOrCreate(ctx, text)
		require.NoError(t, err)
	}

	expected := `
# HELP notation_cache_hits_total Total number of notation cache hits
# TYPE notation_cache_hits_total counter
notation_cache_hits_total{direction="forward"} 2
`
	require.NoError(t, testutil.CollectAndCompare(m, strings.NewReader(expected), "notation_cache_hits_total"))
}
