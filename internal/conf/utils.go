package conf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/tphakala/openingbook/internal/errors"
)

const osWindows = "windows"

// GetDefaultConfigPaths returns the directories searched for config.yaml.
// When one of them already holds a config file, only that directory is returned.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategorySystem).
			Context("operation", "get-home-directory").
			Build()
	}

	var configPaths []string
	switch runtime.GOOS {
	case osWindows:
		exePath, err := os.Executable()
		if err != nil {
			return nil, errors.New(err).
				Category(errors.CategorySystem).
				Context("operation", "get-executable-path").
				Build()
		}
		configPaths = []string{
			filepath.Dir(exePath),
			filepath.Join(homeDir, "AppData", "Roaming", "openingbook"),
		}
	default:
		configPaths = []string{
			filepath.Join(homeDir, ".config", "openingbook"),
			"/etc/openingbook",
		}
	}

	for _, path := range configPaths {
		if _, err := os.Stat(filepath.Join(path, "config.yaml")); err == nil {
			return []string{path}, nil
		}
	}

	return configPaths, nil
}

// ResolveInputPath returns path when it exists, otherwise <baseDir>/pgn/<file name>.
// The second return value reports whether any candidate exists.
func ResolveInputPath(path, baseDir string) (string, bool) {
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	if baseDir == "" {
		return path, false
	}
	fallback := filepath.Join(os.ExpandEnv(baseDir), "pgn", filepath.Base(path))
	if _, err := os.Stat(fallback); err == nil {
		return fallback, true
	}
	return path, false
}
