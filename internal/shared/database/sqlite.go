package database

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// IsSQLite reports whether connStr selects the embedded SQLite driver
// (sqlite:<path> or sqlite::memory:)
func IsSQLite(connStr string) bool {
	return strings.HasPrefix(connStr, "sqlite:")
}

// OpenSQLite opens a pure-Go SQLite database for local development and tests.
// The pool is limited to one connection; SQLite serialises writers anyway.
func OpenSQLite(dsn string) (*gorm.DB, error) {
	dsn = strings.TrimPrefix(dsn, "sqlite:")
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	gormDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	return gormDB, nil
}
