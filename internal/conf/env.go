// env.go - environment variable configuration and validation
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for environment variable bindings
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "OPENINGBOOK_DEBUG", validateEnvBool},

		{"database.type", "OPENINGBOOK_DATABASE_TYPE", validateEnvDatabaseType},
		{"database.sqlite.path", "OPENINGBOOK_SQLITE_PATH", nil},
		{"database.mysql.host", "OPENINGBOOK_MYSQL_HOST", nil},
		{"database.mysql.port", "OPENINGBOOK_MYSQL_PORT", validateEnvPort},
		{"database.mysql.username", "OPENINGBOOK_MYSQL_USERNAME", nil},
		{"database.mysql.password", "OPENINGBOOK_MYSQL_PASSWORD", nil},
		{"database.mysql.database", "OPENINGBOOK_MYSQL_DATABASE", nil},

		{"book.path", "OPENINGBOOK_BOOK_PATH", nil},

		{"import.basedir", "OPENINGBOOK_BASEDIR", nil},
		{"import.commitinterval", "OPENINGBOOK_COMMIT_INTERVAL", validateEnvPositiveInt},
		{"import.maxplies", "OPENINGBOOK_MAX_PLIES", validateEnvPositiveInt},
	}
}

// bindEnvVars sets up environment variable bindings with validation
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		if envValue := os.Getenv(binding.EnvVar); envValue != "" {
			if err := binding.Validate(envValue); err != nil {
				warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("invalid boolean value '%s': must be true/false, 1/0", value)
	}
	return nil
}

func validateEnvDatabaseType(value string) error {
	switch value {
	case DatabaseSQLite, DatabaseMySQL:
		return nil
	}
	return fmt.Errorf("must be one of: %s, %s", DatabaseSQLite, DatabaseMySQL)
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid port: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func validateEnvPositiveInt(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer: %w", err)
	}
	if n <= 0 {
		return fmt.Errorf("must be positive, got %d", n)
	}
	return nil
}
