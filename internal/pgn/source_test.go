package pgn

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/openingbook/internal/errors"
)

const sample = "\ufeff[Event \"one\"]\n[White \"Alpha\"]\n\n1. e4 e5 1-0\n"

func readAll(t *testing.T, path string) []string {
	t.Helper()

	src, err := Open(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, src.Close()) }()

	var lines []string
	for src.Scan() {
		lines = append(lines, src.Text())
	}
	require.NoError(t, src.Err())
	assert.Equal(t, len(lines), src.LineNumber())
	assert.Equal(t, path, src.Path())
	return lines
}

func TestSourcePlainStripsBOM(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "games.pgn")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	lines := readAll(t, path)
	require.Len(t, lines, 4)
	assert.Equal(t, `[Event "one"]`, lines[0])
}

func TestSourceGzip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "games.pgn.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(sample))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	lines := readAll(t, path)
	assert.Equal(t, "1. e4 e5 1-0", lines[3])
}

func TestSourceZstd(t *testing.T) {
	t.Parallel()

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	data := enc.EncodeAll([]byte(sample), nil)
	require.NoError(t, enc.Close())

	path := filepath.Join(t.TempDir(), "games.pgn.zst")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	lines := readAll(t, path)
	require.Len(t, lines, 4)
	assert.Equal(t, `[Event "one"]`, lines[0])
}

func TestSourceMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Open(filepath.Join(t.TempDir(), "absent.pgn"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestSourceFeedsDetector(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "games.pgn")
	require.NoError(t, os.WriteFile(path, []byte(twoGames), 0o600))

	src, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	count := 0
	d := NewDetector(ListenerFunc(func(*Record) error {
		count++
		return nil
	}))
	require.NoError(t, d.Run(src))
	assert.Equal(t, 2, count)
}
