package datastore

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tphakala/openingbook/internal/conf"
	"github.com/tphakala/openingbook/internal/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// newTestSession opens an in-memory store closed at test end
func newTestSession(t *testing.T) *Session {
	t.Helper()

	s, err := Open(Config{Type: conf.DatabaseSQLite, SQLitePath: memoryPath}, nil, Models()...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNotationUpsertIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewNotationStore(newTestSession(t))

	e4, err := store.UpsertGetID(ctx, "e4")
	require.NoError(t, err)
	nf3, err := store.UpsertGetID(ctx, "Nf3")
	require.NoError(t, err)
	again, err := store.UpsertGetID(ctx, "e4")
	require.NoError(t, err)

	assert.NotZero(t, e4)
	assert.NotEqual(t, e4, nf3)
	assert.Equal(t, e4, again)

	text, found, err := store.LookupByID(ctx, nf3)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Nf3", text)

	_, found, err = store.LookupByID(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, found)

	id, found, err := store.LookupByText(ctx, "e4")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, e4, id)

	_, found, err = store.LookupByText(ctx, "Qxh7#")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMainLineInsertIfNew(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := NewMainLineStore(newTestSession(t))

	first := &MainLine{Fingerprint: strings.Repeat("a", 64), Moves: "e4 e5", Plies: 2}
	wasNew, err := store.InsertIfNew(ctx, first)
	require.NoError(t, err)
	assert.True(t, wasNew)
	assert.NotZero(t, first.ID)

	dup := &MainLine{Fingerprint: strings.Repeat("a", 64), Moves: "e4 e5", Plies: 2}
	wasNew, err = store.InsertIfNew(ctx, dup)
	require.NoError(t, err)
	assert.False(t, wasNew)
	assert.Equal(t, first.ID, dup.ID)

	other := &MainLine{Fingerprint: strings.Repeat("b", 64), Moves: "d4 d5", Plies: 2}
	wasNew, err = store.InsertIfNew(ctx, other)
	require.NoError(t, err)
	assert.True(t, wasNew)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestGameArchiveKeepsIdentityOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestSession(t)
	store := NewGameStore(s)

	game := &Game{MainLineID: 1, White: "Alpha", Black: "Beta", Result: "1-0", MoveText: strings.Repeat("x", MaxArchivedMoveText+10)}
	saved, err := store.Save(ctx, game)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Len(t, game.MoveText, MaxArchivedMoveText)

	saved, err = store.Save(ctx, &Game{MainLineID: 1, White: "Alpha", Black: "Beta", Result: "1-0"})
	require.NoError(t, err)
	assert.False(t, saved)

	saved, err = store.Save(ctx, &Game{MainLineID: 1, White: "Alpha", Black: "Beta", Result: "0-1"})
	require.NoError(t, err)
	assert.True(t, saved)

	tx, err := s.Tx()
	require.NoError(t, err)
	var n int64
	require.NoError(t, tx.WithContext(ctx).Model(&Game{}).Where("main_line_id = ?", 1).Count(&n).Error)
	assert.Equal(t, int64(2), n)
}

func TestRunJournal(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	journal := NewRunJournal(newTestSession(t))

	run, err := journal.Start(ctx, "run-1", "a.pgn")
	require.NoError(t, err)
	assert.Equal(t, RunRunning, run.Status)

	run.Imported = 3
	run.Duplicates = 1
	require.NoError(t, journal.Finish(ctx, run, nil))

	failed, err := journal.Start(ctx, "run-1", "b.pgn")
	require.NoError(t, err)
	require.NoError(t, journal.Finish(ctx, failed, stderrors.New("disk on fire")))

	runs, err := journal.Runs(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, RunCompleted, runs[0].Status)
	assert.Equal(t, 3, runs[0].Imported)
	assert.NotNil(t, runs[0].FinishedAt)
	assert.Equal(t, RunFailed, runs[1].Status)
	assert.Equal(t, "disk on fire", runs[1].Error)
}

func TestSessionCommitPersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	cfg := Config{Type: conf.DatabaseSQLite, SQLitePath: filepath.Join(t.TempDir(), "nested", "store.db")}

	s, err := Open(cfg, nil, Models()...)
	require.NoError(t, err)
	id, err := NewNotationStore(s).UpsertGetID(ctx, "c4")
	require.NoError(t, err)
	require.NoError(t, s.Commit())

	_, err = NewNotationStore(s).UpsertGetID(ctx, "d4")
	require.NoError(t, err)
	require.NoError(t, s.Rollback())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")

	reopened, err := Open(cfg, nil, Models()...)
	require.NoError(t, err)
	defer func() { require.NoError(t, reopened.Close()) }()

	store := NewNotationStore(reopened)
	got, found, err := store.LookupByText(ctx, "c4")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, id, got)

	_, found, err = store.LookupByText(ctx, "d4")
	require.NoError(t, err)
	assert.False(t, found, "rolled back write must not persist")
}

func TestSessionClosedRejectsWork(t *testing.T) {
	t.Parallel()

	s, err := Open(Config{Type: conf.DatabaseSQLite, SQLitePath: memoryPath}, nil, Models()...)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Tx()
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryState))

	_, err = NewNotationStore(s).UpsertGetID(context.Background(), "e4")
	assert.Error(t, err)
}

func TestOpenRejectsUnknownType(t *testing.T) {
	t.Parallel()

	_, err := Open(Config{Type: "postgres"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestCategorizeError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{stderrors.New("UNIQUE constraint failed: notations.text"), "constraint_violation"},
		{stderrors.New("database is locked"), "database_locked"},
		{stderrors.New("i/o timeout"), "timeout"},
		{stderrors.New("something else"), "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, categorizeError(tt.err))
	}
}

func TestMySQLDSN(t *testing.T) {
	t.Parallel()

	cfg := Config{MySQL: conf.MySQLSettings{Host: "db", Port: "3306", Username: "u", Password: "p", Database: "book"}}
	assert.Equal(t, "u:p@tcp(db:3306)/book?charset=utf8mb4&parseTime=True&loc=Local", mysqlDSN(cfg))
}
