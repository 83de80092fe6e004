// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Default values shared with the embedded config.yaml
const (
	DefaultCommitInterval   = 3000
	DefaultMaxPlies         = 32
	DefaultProgressInterval = 1000
	DefaultTelemetryListen  = "localhost:8090"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("logging.default_level", "info")
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", true)
	viper.SetDefault("logging.console.level", "info")
	viper.SetDefault("logging.file_output.enabled", false)
	viper.SetDefault("logging.file_output.path", "logs/openingbook.log")
	viper.SetDefault("logging.file_output.level", "info")

	viper.SetDefault("database.type", "sqlite")
	viper.SetDefault("database.sqlite.path", "openingbook.db")
	viper.SetDefault("database.mysql.host", "localhost")
	viper.SetDefault("database.mysql.port", "3306")
	viper.SetDefault("database.mysql.username", "")
	viper.SetDefault("database.mysql.password", "")
	viper.SetDefault("database.mysql.database", "openingbook")
	viper.SetDefault("database.slowthreshold", 200*time.Millisecond)

	viper.SetDefault("book.path", "book.db")

	viper.SetDefault("import.basedir", ".")
	viper.SetDefault("import.commitinterval", DefaultCommitInterval)
	viper.SetDefault("import.maxplies", DefaultMaxPlies)
	viper.SetDefault("import.progressinterval", DefaultProgressInterval)
	viper.SetDefault("import.progressthrottle", 5*time.Second)
	viper.SetDefault("import.storegames", true)

	viper.SetDefault("openings.handlers", []map[string]any{
		{"name": "all", "eco": []string{"A00-E99"}},
	})

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", DefaultTelemetryListen)
}
