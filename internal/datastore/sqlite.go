package datastore

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tphakala/openingbook/internal/errors"
	"github.com/tphakala/openingbook/internal/logger"
)

const memoryPath = ":memory:"

// openSQLite opens the database file, creating its directory when missing.
// SQLite allows one writer, so the pool is limited to a single connection and
// every statement runs on the batching transaction.
func openSQLite(cfg Config, log logger.Logger) (*gorm.DB, error) {
	dsn := memoryPath
	if cfg.SQLitePath != memoryPath {
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.New(err).
					Component("datastore").
					Category(errors.CategoryFileIO).
					FileContext(cfg.SQLitePath).
					Build()
			}
		}
		dsn = fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000", cfg.SQLitePath)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(log, cfg.SlowThreshold),
	})
	if err != nil {
		return nil, dbError(err, "open_sqlite", "path", cfg.SQLitePath)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, dbError(err, "open_sqlite", "path", cfg.SQLitePath)
	}
	sqlDB.SetMaxOpenConns(1)

	log.Debug("SQLite database opened", logger.String("path", cfg.SQLitePath))
	return db, nil
}
