// config.go: settings struct for the opening-book importer and functions to load it.
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/openingbook/internal/errors"
	"github.com/tphakala/openingbook/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// ConfigFileEnv names the environment variable that points at an explicit config file.
const ConfigFileEnv = "OPENINGBOOK_CONFIG"

// SQLiteSettings configures the embedded store
type SQLiteSettings struct {
	Path string `yaml:"path"` // database file, ":memory:" for a throwaway store
}

// MySQLSettings configures the optional MySQL store
type MySQLSettings struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// DatabaseSettings selects and configures the notation / game store
type DatabaseSettings struct {
	Type          string         `yaml:"type"` // sqlite or mysql
	SQLite        SQLiteSettings `yaml:"sqlite"`
	MySQL         MySQLSettings  `yaml:"mysql"`
	SlowThreshold time.Duration  `yaml:"slowthreshold"` // statements slower than this are logged as warnings
}

// BookSettings configures the opening statistics book
type BookSettings struct {
	Path string `yaml:"path"` // sqlite file holding positions and move edges
}

// ImportSettings controls the import pipeline
type ImportSettings struct {
	BaseDir          string        `yaml:"basedir"`          // fallback lookup directory, files are tried as <basedir>/pgn/<file>
	CommitInterval   int           `yaml:"commitinterval"`   // records between commits
	MaxPlies         int           `yaml:"maxplies"`         // half-moves recorded per game
	ProgressInterval int           `yaml:"progressinterval"` // records between progress lines
	ProgressThrottle time.Duration `yaml:"progressthrottle"` // minimum time between progress lines
	StoreGames       bool          `yaml:"storegames"`       // archive imported games in the games table
}

// OpeningHandler claims records whose ECO code falls in one of its ranges
type OpeningHandler struct {
	Name string   `yaml:"name"`
	ECO  []string `yaml:"eco"` // e.g. "B10-B19" or a single code "C42"
}

// OpeningsSettings lists the configured opening handlers
type OpeningsSettings struct {
	Handlers []OpeningHandler `yaml:"handlers"`
}

// TelemetrySettings controls the Prometheus endpoint
type TelemetrySettings struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

// Settings contains all configuration options for the importer.
type Settings struct {
	Debug     bool                 `yaml:"debug"`
	Logging   logger.LoggingConfig `yaml:"logging"`
	Database  DatabaseSettings     `yaml:"database"`
	Book      BookSettings         `yaml:"book"`
	Import    ImportSettings       `yaml:"import"`
	Openings  OpeningsSettings     `yaml:"openings"`
	Telemetry TelemetrySettings    `yaml:"telemetry"`
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(err).
			Category(errors.CategoryConfiguration).
			Context("operation", "unmarshal-config").
			Build()
	}

	if settings.Debug && settings.Logging.DefaultLevel != "trace" {
		settings.Logging.DefaultLevel = "debug"
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	setDefaultConfig()

	if err := bindEnvVars(); err != nil {
		GetLogger().Warn("environment configuration issues", logger.Error(err))
	}

	if explicit := os.Getenv(ConfigFileEnv); explicit != "" {
		viper.SetConfigFile(explicit)
		if err := viper.ReadInConfig(); err != nil {
			return errors.New(err).
				Category(errors.CategoryConfiguration).
				FileContext(explicit).
				Build()
		}
		return nil
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config into dir and reads it back
func createDefaultConfig(dir string) error {
	configPath := filepath.Join(dir, "config.yaml")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, getDefaultConfig(), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	GetLogger().Info("created default config file", logger.String("path", configPath))
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() []byte {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		// the file is embedded at build time
		panic(fmt.Sprintf("embedded config.yaml missing: %v", err))
	}
	return data
}

// GetSettings returns the current settings instance
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// MarshalYAMLConfig renders the effective settings with the MySQL password masked.
func (s *Settings) MarshalYAMLConfig() ([]byte, error) {
	masked := *s
	if masked.Database.MySQL.Password != "" {
		masked.Database.MySQL.Password = "********"
	}
	data, err := yaml.Marshal(&masked)
	if err != nil {
		return nil, fmt.Errorf("error marshaling settings to YAML: %w", err)
	}
	return data, nil
}
