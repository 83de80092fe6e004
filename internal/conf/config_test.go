package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv(ConfigFileEnv, writeConfig(t, "debug: false\n"))

	settings, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DatabaseSQLite, settings.Database.Type)
	assert.Equal(t, "openingbook.db", settings.Database.SQLite.Path)
	assert.Equal(t, DefaultCommitInterval, settings.Import.CommitInterval)
	assert.Equal(t, DefaultMaxPlies, settings.Import.MaxPlies)
	assert.Equal(t, 5*time.Second, settings.Import.ProgressThrottle)
	assert.True(t, settings.Import.StoreGames)
	require.Len(t, settings.Openings.Handlers, 1)
	assert.Equal(t, "all", settings.Openings.Handlers[0].Name)
	assert.Equal(t, []string{"A00-E99"}, settings.Openings.Handlers[0].ECO)
	assert.Same(t, settings, GetSettings())
}

func TestLoadReadsFileAndEnvironment(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv(ConfigFileEnv, writeConfig(t, `
debug: true
import:
  commitinterval: 50
  maxplies: 20
openings:
  handlers:
    - name: caro-kann
      eco: ["B10-B19"]
    - name: petrov
      eco: ["C42"]
`))
	t.Setenv("OPENINGBOOK_SQLITE_PATH", "/tmp/override.db")

	settings, err := Load()
	require.NoError(t, err)

	assert.True(t, settings.Debug)
	assert.Equal(t, "debug", settings.Logging.DefaultLevel)
	assert.Equal(t, 50, settings.Import.CommitInterval)
	assert.Equal(t, 20, settings.Import.MaxPlies)
	assert.Equal(t, "/tmp/override.db", settings.Database.SQLite.Path)
	require.Len(t, settings.Openings.Handlers, 2)
	assert.Equal(t, "petrov", settings.Openings.Handlers[1].Name)
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv(ConfigFileEnv, writeConfig(t, "import:\n  commitinterval: 0\n"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "commitinterval")
}

func TestEmbeddedDefaultConfigParses(t *testing.T) {
	t.Parallel()

	var parsed map[string]any
	require.NoError(t, yaml.Unmarshal(getDefaultConfig(), &parsed))
	assert.Contains(t, parsed, "database")
	assert.Contains(t, parsed, "import")
	assert.Contains(t, parsed, "openings")
}

func TestMarshalYAMLConfigMasksPassword(t *testing.T) {
	t.Parallel()

	settings := &Settings{}
	settings.Database.MySQL.Password = "secret"

	data, err := settings.MarshalYAMLConfig()
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret")
	assert.Equal(t, "secret", settings.Database.MySQL.Password, "original left untouched")
}

func TestResolveInputPath(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(base, "pgn"), 0o755))
	archived := filepath.Join(base, "pgn", "kingbase.pgn")
	require.NoError(t, os.WriteFile(archived, []byte("[Event \"x\"]\n"), 0o600))

	direct := filepath.Join(t.TempDir(), "direct.pgn")
	require.NoError(t, os.WriteFile(direct, nil, 0o600))

	got, ok := ResolveInputPath(direct, base)
	assert.True(t, ok)
	assert.Equal(t, direct, got)

	got, ok = ResolveInputPath("kingbase.pgn", base)
	assert.True(t, ok)
	assert.Equal(t, archived, got)

	got, ok = ResolveInputPath("missing.pgn", base)
	assert.False(t, ok)
	assert.Equal(t, "missing.pgn", got)
}
