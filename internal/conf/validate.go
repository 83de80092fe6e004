// conf/validate.go

package conf

import (
	"fmt"
	"regexp"
	"strings"
)

// Supported database types
const (
	DatabaseSQLite = "sqlite"
	DatabaseMySQL  = "mysql"
)

// ecoRangePattern matches a single opening code ("C42") or a range ("B10-B19")
var ecoRangePattern = regexp.MustCompile(`^[A-E][0-9]{2}(-[A-E][0-9]{2})?$`)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateDatabaseSettings(&settings.Database); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if strings.TrimSpace(settings.Book.Path) == "" {
		ve.Errors = append(ve.Errors, "book path must not be empty")
	}

	if err := validateImportSettings(&settings.Import); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateOpeningsSettings(&settings.Openings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if settings.Telemetry.Enabled && settings.Telemetry.Listen == "" {
		ve.Errors = append(ve.Errors, "telemetry listen address is required when telemetry is enabled")
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateDatabaseSettings(settings *DatabaseSettings) error {
	switch settings.Type {
	case DatabaseSQLite:
		if strings.TrimSpace(settings.SQLite.Path) == "" {
			return fmt.Errorf("database.sqlite.path must not be empty")
		}
	case DatabaseMySQL:
		var missing []string
		if settings.MySQL.Host == "" {
			missing = append(missing, "host")
		}
		if settings.MySQL.Database == "" {
			missing = append(missing, "database")
		}
		if settings.MySQL.Username == "" {
			missing = append(missing, "username")
		}
		if len(missing) > 0 {
			return fmt.Errorf("database.mysql is missing: %s", strings.Join(missing, ", "))
		}
	default:
		return fmt.Errorf("database.type must be %q or %q, got %q", DatabaseSQLite, DatabaseMySQL, settings.Type)
	}
	return nil
}

func validateImportSettings(settings *ImportSettings) error {
	var errs []string

	if settings.CommitInterval <= 0 {
		errs = append(errs, fmt.Sprintf("import.commitinterval must be positive, got %d", settings.CommitInterval))
	}
	if settings.MaxPlies <= 0 {
		errs = append(errs, fmt.Sprintf("import.maxplies must be positive, got %d", settings.MaxPlies))
	}
	if settings.ProgressInterval <= 0 {
		errs = append(errs, fmt.Sprintf("import.progressinterval must be positive, got %d", settings.ProgressInterval))
	}
	if settings.ProgressThrottle < 0 {
		errs = append(errs, "import.progressthrottle must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("import settings errors: %v", errs)
	}
	return nil
}

func validateOpeningsSettings(settings *OpeningsSettings) error {
	var errs []string
	seen := make(map[string]bool, len(settings.Handlers))

	for i, handler := range settings.Handlers {
		name := strings.TrimSpace(handler.Name)
		if name == "" {
			errs = append(errs, fmt.Sprintf("handler %d has no name", i))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Sprintf("handler %q is defined twice", name))
		}
		seen[name] = true

		if len(handler.ECO) == 0 {
			errs = append(errs, fmt.Sprintf("handler %q has no eco ranges", name))
		}
		for _, r := range handler.ECO {
			if !ecoRangePattern.MatchString(strings.ToUpper(strings.TrimSpace(r))) {
				errs = append(errs, fmt.Sprintf("handler %q has invalid eco range %q", name, r))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("openings settings errors: %v", errs)
	}
	return nil
}
