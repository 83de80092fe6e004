package openings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tphakala/openingbook/internal/board"
	"github.com/tphakala/openingbook/internal/conf"
	"github.com/tphakala/openingbook/internal/datastore"
	"github.com/tphakala/openingbook/internal/errors"
	"github.com/tphakala/openingbook/internal/pgn"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testRegistry(t *testing.T) *Registry {
	t.Helper()

	r, err := NewRegistry(conf.OpeningsSettings{Handlers: []conf.OpeningHandler{
		{Name: "caro-kann", ECO: []string{"B10-B19"}},
		{Name: "open-games", ECO: []string{"C20-C99", "B12"}},
		{Name: "queens-gambit", ECO: []string{"D06"}},
	}})
	require.NoError(t, err)
	return r
}

func TestRegistryFindsFirstCoveringHandler(t *testing.T) {
	t.Parallel()
	r := testRegistry(t)

	tests := []struct {
		eco  string
		want string
	}{
		{"B10", "caro-kann"},
		{"B12", "caro-kann"},
		{"b19", "caro-kann"},
		{"C42", "open-games"},
		{" D06 ", "queens-gambit"},
		{"C42a", "open-games"},
	}
	for _, tt := range tests {
		h, ok := r.FindByCode(tt.eco)
		require.True(t, ok, tt.eco)
		assert.Equal(t, tt.want, h.Name, tt.eco)
	}

	for _, eco := range []string{"A00", "D07", "E99", ""} {
		_, ok := r.FindByCode(eco)
		assert.False(t, ok, eco)
	}

	// memoized misses stay misses
	_, ok := r.FindByCode("A00")
	assert.False(t, ok)

	rec := pgn.NewRecord("0", "")
	rec.ECO = "B15"
	h, ok := r.Find(rec)
	require.True(t, ok)
	assert.Equal(t, "caro-kann", h.Name)
	assert.Len(t, r.Handlers(), 3)
}

func TestRegistryRejectsBadRanges(t *testing.T) {
	t.Parallel()

	for _, rangeText := range []string{"B1", "B19-B10", "B10-", "B10-B1999"} {
		_, err := NewRegistry(conf.OpeningsSettings{Handlers: []conf.OpeningHandler{
			{Name: "broken", ECO: []string{rangeText}},
		}})
		require.Error(t, err, rangeText)
		assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration), rangeText)
	}
}

func newTestBook(t *testing.T) *Book {
	t.Helper()

	b, err := OpenBook(datastore.Config{Type: conf.DatabaseSQLite, SQLitePath: ":memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

// triples replays sans from the start and builds book triples with ids from the map
func triples(t *testing.T, ids map[string]uint, sans ...string) []Triple {
	t.Helper()

	line, err := board.Resolve(board.StartingPosition(), sans)
	require.NoError(t, err)

	pos := line.Start
	out := []Triple{{To: pos.Key()}}
	for _, m := range line.Moves {
		next := pos.Apply(m)
		out = append(out, Triple{From: pos.Key(), NotationID: ids[m.SAN()], To: next.Key()})
		pos = next
	}
	return out
}

func TestBookCountsResultsPerPosition(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := newTestBook(t)
	ids := map[string]uint{"e4": 1, "e5": 2, "c5": 3, "d4": 4}

	require.NoError(t, b.StoreMoves(ctx, "all", triples(t, ids, "e4", "e5"), pgn.ResultWhiteWins))
	require.NoError(t, b.StoreMoves(ctx, "all", triples(t, ids, "e4", "c5"), pgn.ResultBlackWins))
	require.NoError(t, b.StoreMoves(ctx, "all", triples(t, ids, "e4", "e5"), pgn.ResultDraw))
	require.NoError(t, b.StoreMoves(ctx, "other", triples(t, ids, "d4"), pgn.ResultDraw))
	require.NoError(t, b.CommitAll())

	start, found, err := b.Position(ctx, "all", board.StandardFEN)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 1, start.WhiteWins)
	assert.Equal(t, 1, start.Draws)
	assert.Equal(t, 1, start.BlackWins)
	assert.Equal(t, 3, start.Games())

	afterE4, err := board.Resolve(board.StartingPosition(), []string{"e4"})
	require.NoError(t, err)
	moves, err := b.TopMoves(ctx, "all", afterE4.End().FEN(), 10)
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, ids["e5"], moves[0].NotationID)
	assert.Equal(t, 2, moves[0].Games)
	assert.Equal(t, 1, moves[0].WhiteWins)
	assert.Equal(t, 1, moves[0].Draws)
	assert.Equal(t, ids["c5"], moves[1].NotationID)
	assert.Equal(t, 1, moves[1].BlackWins)

	other, err := b.TopMoves(ctx, "other", board.StandardFEN, 10)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, ids["d4"], other[0].NotationID)
}

func TestTopMovesDropsRareMoves(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	b := newTestBook(t)
	ids := map[string]uint{"e4": 1, "d4": 2, "a3": 3}

	for range 11 {
		require.NoError(t, b.StoreMoves(ctx, "all", triples(t, ids, "e4"), pgn.ResultDraw))
	}
	for range 9 {
		require.NoError(t, b.StoreMoves(ctx, "all", triples(t, ids, "d4"), pgn.ResultDraw))
	}
	require.NoError(t, b.StoreMoves(ctx, "all", triples(t, ids, "a3"), pgn.ResultDraw))

	moves, err := b.TopMoves(ctx, "all", board.StandardFEN, 10)
	require.NoError(t, err)
	require.Len(t, moves, 2)
	assert.Equal(t, ids["e4"], moves[0].NotationID)
	assert.Equal(t, ids["d4"], moves[1].NotationID)

	limited, err := b.TopMoves(ctx, "all", board.StandardFEN, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	unknown, err := b.TopMoves(ctx, "nobody", board.StandardFEN, 10)
	require.NoError(t, err)
	assert.Empty(t, unknown)
}
