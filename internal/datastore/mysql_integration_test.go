//go:build integration

package datastore

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/tphakala/openingbook/internal/conf"
)

func startMySQL(t *testing.T) Config {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcmysql.Run(ctx, "mysql:8.0.36",
		tcmysql.WithDatabase("openingbook"),
		tcmysql.WithUsername("book"),
		tcmysql.WithPassword("book"),
	)
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(ctr); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})
	require.NoError(t, err)

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	return Config{
		Type: conf.DatabaseMySQL,
		MySQL: conf.MySQLSettings{
			Host:     host,
			Port:     port.Port(),
			Username: "book",
			Password: "book",
			Database: "openingbook",
		},
	}
}

func TestMySQLStores(t *testing.T) {
	cfg := startMySQL(t)
	ctx := context.Background()

	s, err := Open(cfg, nil, Models()...)
	require.NoError(t, err)
	defer func() { require.NoError(t, s.Close()) }()

	notations := NewNotationStore(s)
	e4, err := notations.UpsertGetID(ctx, "e4")
	require.NoError(t, err)
	again, err := notations.UpsertGetID(ctx, "e4")
	require.NoError(t, err)
	assert.Equal(t, e4, again)
	require.NoError(t, s.Commit())

	lines := NewMainLineStore(s)
	line := &MainLine{Fingerprint: strings.Repeat("c", 64), Moves: "e4", Plies: 1}
	wasNew, err := lines.InsertIfNew(ctx, line)
	require.NoError(t, err)
	assert.True(t, wasNew)

	dup := &MainLine{Fingerprint: strings.Repeat("c", 64), Moves: "e4", Plies: 1}
	wasNew, err = lines.InsertIfNew(ctx, dup)
	require.NoError(t, err)
	assert.False(t, wasNew)
	assert.Equal(t, line.ID, dup.ID)
}
