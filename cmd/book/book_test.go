package book

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tphakala/openingbook/internal/board"
	"github.com/tphakala/openingbook/internal/conf"
	"github.com/tphakala/openingbook/internal/datastore"
	"github.com/tphakala/openingbook/internal/openings"
	"github.com/tphakala/openingbook/internal/pgn"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func seedBook(t *testing.T) *conf.Settings {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()

	settings := &conf.Settings{}
	settings.Database.Type = conf.DatabaseSQLite
	settings.Database.SQLite.Path = filepath.Join(dir, "store.db")
	settings.Book.Path = filepath.Join(dir, "book.db")
	settings.Openings.Handlers = []conf.OpeningHandler{{Name: "open", ECO: []string{"C00-C99"}}}

	store, err := datastore.Open(datastore.StoreConfig(settings), nil, datastore.Models()...)
	require.NoError(t, err)
	e4, err := datastore.NewNotationStore(store).UpsertGetID(ctx, "e4")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	line, err := board.Resolve(board.StartingPosition(), []string{"e4"})
	require.NoError(t, err)
	root := board.StartingPosition().Key()

	bk, err := openings.OpenBook(datastore.BookConfig(settings), nil)
	require.NoError(t, err)
	require.NoError(t, bk.StoreMoves(ctx, "open", []openings.Triple{
		{To: root},
		{From: root, NotationID: e4, To: line.End().Key()},
	}, pgn.ResultWhiteWins))
	require.NoError(t, bk.Close())

	return settings
}

func TestShowMatchesParsedPosition(t *testing.T) {
	settings := seedBook(t)

	tests := []struct {
		name string
		fen  string
	}{
		{"standard", board.StandardFEN},
		{"blank means start", "   "},
		{"other move counters", "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 7 42"},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		require.NoError(t, show(context.Background(), &out, settings, &options{limit: defaultLimit}, tt.fen), tt.name)

		assert.Contains(t, out.String(), "open: 1 games (+1 =0 -0)", tt.name)
		assert.Contains(t, out.String(), "e4", tt.name)
		assert.NotContains(t, out.String(), "position not in book", tt.name)
	}
}

func TestShowRejectsInvalidFEN(t *testing.T) {
	settings := seedBook(t)

	var out bytes.Buffer
	err := show(context.Background(), &out, settings, &options{}, "not a fen")
	require.Error(t, err)
	assert.Empty(t, out.String())
}
