package database

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"todo-backend/pkg/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresConnection opens the gorm connection pool for cfg.DatabaseURL.
// Driver errors are translated so unique violations surface as gorm.ErrDuplicatedKey.
func NewPostgresConnection(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		TranslateError: true,
		Logger:         newGormLogger(cfg.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

func newGormLogger(level string) logger.Interface {
	return logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  GormLogLevel(level),
			IgnoreRecordNotFoundError: true,
		},
	)
}

// GormLogLevel maps LOG_LEVEL onto gorm's coarser levels. SQL statements are
// only traced at debug.
func GormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.Info
	case "info", "warn", "warning":
		return logger.Warn
	case "error":
		return logger.Error
	default:
		return logger.Warn
	}
}
