package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// ConnectSQLite opens a SQLite database, used for local runs and tests.
func ConnectSQLite(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite handle: %w", err)
	}
	// sqlite allows a single writer.
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}

// Connect opens the database for the configured driver.
func Connect(driver, dsn string) (*gorm.DB, error) {
	switch driver {
	case "postgres":
		return ConnectPostgres(dsn)
	case "sqlite":
		return ConnectSQLite(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}
