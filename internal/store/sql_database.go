package store

import (
	"database/sql"
	"fmt"

	"github.com/hrdocs/docvault/internal/logger"
	"github.com/hrdocs/docvault/migrations"
)

// DB wraps the sql.DB connection pool together with the driver name and an
// error classifier for the active backend.
type DB struct {
	*sql.DB
	driver             string
	errorClassificator ErrorClassificator
	logger             *logger.Logger
}

// Migrate brings the schema up to date. PostgreSQL uses the embedded goose
// migrations; the sqlite3 dev backend bootstraps its schema inline because
// the migration files use PostgreSQL column types.
func (db *DB) Migrate() error {
	switch db.driver {
	case "sqlite3":
		return bootstrapSQLite(db.DB)
	default:
		return migrations.Migrate(db.DB)
	}
}

// Close shuts down the underlying connection pool.
func (db *DB) Close() error {
	if err := db.DB.Close(); err != nil {
		return fmt.Errorf("error closing database connection: %w", err)
	}
	return nil
}
