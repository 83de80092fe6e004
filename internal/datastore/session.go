// Package datastore persists notation ids, main-line fingerprints, archived
// games and the import run journal through GORM on SQLite or MySQL.
package datastore

import (
	"time"

	"gorm.io/gorm"

	"github.com/tphakala/openingbook/internal/conf"
	"github.com/tphakala/openingbook/internal/logger"
	"github.com/tphakala/openingbook/internal/observability/metrics"
)

// metric operation names
const (
	opQuery  = metrics.OpDbQuery
	opInsert = metrics.OpDbInsert
	opUpdate = metrics.OpDbUpdate
)

// Config selects and configures one database
type Config struct {
	Type          string // conf.DatabaseSQLite or conf.DatabaseMySQL
	SQLitePath    string
	MySQL         conf.MySQLSettings
	SlowThreshold time.Duration
}

// StoreConfig returns the configuration of the main importer store
func StoreConfig(settings *conf.Settings) Config {
	return Config{
		Type:          settings.Database.Type,
		SQLitePath:    settings.Database.SQLite.Path,
		MySQL:         settings.Database.MySQL,
		SlowThreshold: settings.Database.SlowThreshold,
	}
}

// BookConfig returns the configuration of the statistics book, which always
// lives in its own SQLite file.
func BookConfig(settings *conf.Settings) Config {
	return Config{
		Type:          conf.DatabaseSQLite,
		SQLitePath:    settings.Book.Path,
		SlowThreshold: settings.Database.SlowThreshold,
	}
}

// Session owns one database connection and the transaction currently batching
// writes. Writes go through Tx and become durable on Commit. Close commits what
// is pending and releases the connection; it is safe to defer and to call twice.
//
// A Session is not safe for concurrent use.
type Session struct {
	cfg      Config
	db       *gorm.DB
	tx       *gorm.DB
	log      logger.Logger
	recorder metrics.Recorder
	commits  int
	closed   bool
}

// Open connects, migrates the given models and returns a ready session.
// A nil recorder disables metrics.
func Open(cfg Config, recorder metrics.Recorder, models ...any) (*Session, error) {
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	log := GetLogger().With(logger.String("db_type", cfg.Type))

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Type {
	case conf.DatabaseMySQL:
		db, err = openMySQL(cfg, log)
	case conf.DatabaseSQLite, "":
		cfg.Type = conf.DatabaseSQLite
		db, err = openSQLite(cfg, log)
	default:
		err = validationError("unsupported database type", "type", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	s := &Session{cfg: cfg, db: db, log: log, recorder: recorder}

	if err := s.migrate(models...); err != nil {
		_ = s.closeDB()
		return nil, err
	}
	return s, nil
}

func (s *Session) migrate(models ...any) error {
	if len(models) == 0 {
		return nil
	}
	start := time.Now()
	if err := s.db.AutoMigrate(models...); err != nil {
		return dbError(err, "auto_migrate", "db_type", s.cfg.Type)
	}
	s.log.Debug("Database migration completed",
		logger.Int("tables", len(models)),
		logger.Duration("duration", time.Since(start)))
	return nil
}

// Tx returns the open transaction, beginning one if needed
func (s *Session) Tx() (*gorm.DB, error) {
	if s.closed {
		return nil, stateError("tx")
	}
	if s.tx != nil {
		return s.tx, nil
	}
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, dbError(tx.Error, "begin_transaction")
	}
	s.tx = tx
	return tx, nil
}

// Commit makes pending writes durable. Without pending writes it does nothing.
func (s *Session) Commit() error {
	if s.closed {
		return stateError("commit")
	}
	if s.tx == nil {
		return nil
	}

	start := time.Now()
	err := s.tx.Commit().Error
	s.tx = nil
	s.recorder.RecordDuration(metrics.OpTransaction, time.Since(start).Seconds())
	if err != nil {
		s.recorder.RecordError(metrics.OpTransaction, categorizeError(err))
		return dbError(err, "commit")
	}
	s.recorder.RecordOperation(metrics.OpTransaction, metrics.StatusSuccess)
	s.commits++
	return nil
}

// Rollback discards pending writes
func (s *Session) Rollback() error {
	if s.closed || s.tx == nil {
		return nil
	}
	err := s.tx.Rollback().Error
	s.tx = nil
	if err != nil {
		return dbError(err, "rollback")
	}
	return nil
}

// Type returns the database type of the session
func (s *Session) Type() string {
	return s.cfg.Type
}

// Close commits pending writes and closes the connection
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	commitErr := s.Commit()
	if commitErr != nil {
		_ = s.Rollback()
	}
	s.closed = true

	if err := s.closeDB(); err != nil {
		return err
	}
	s.log.Debug("Database connection closed", logger.Int("commits", s.commits))
	return commitErr
}

func (s *Session) closeDB() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return dbError(err, "close")
	}
	if err := sqlDB.Close(); err != nil {
		return dbError(err, "close")
	}
	return nil
}

// observe records the outcome of one statement
func (s *Session) observe(op, table string, start time.Time, err error) {
	name := op + ":" + table
	s.recorder.RecordDuration(name, time.Since(start).Seconds())
	if err != nil {
		s.recorder.RecordError(name, categorizeError(err))
		return
	}
	s.recorder.RecordOperation(name, metrics.StatusSuccess)
}
