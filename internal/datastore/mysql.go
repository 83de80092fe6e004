package datastore

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/tphakala/openingbook/internal/logger"
)

// mysqlDSN builds the driver connection string
func mysqlDSN(cfg Config) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.MySQL.Username, cfg.MySQL.Password,
		cfg.MySQL.Host, cfg.MySQL.Port,
		cfg.MySQL.Database)
}

func openMySQL(cfg Config, log logger.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(mysqlDSN(cfg)), &gorm.Config{
		Logger: logger.NewGormLoggerAdapter(log, cfg.SlowThreshold),
	})
	if err != nil {
		log.Error("Failed to open MySQL database",
			logger.String("host", cfg.MySQL.Host),
			logger.String("port", cfg.MySQL.Port),
			logger.String("database", cfg.MySQL.Database),
			logger.Error(err))
		return nil, dbError(err, "open_mysql",
			"host", cfg.MySQL.Host,
			"database", cfg.MySQL.Database)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, dbError(err, "open_mysql")
	}
	// one importer writes through one transaction
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Debug("MySQL database opened",
		logger.String("host", cfg.MySQL.Host),
		logger.String("database", cfg.MySQL.Database))
	return db, nil
}
