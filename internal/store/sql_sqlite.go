package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hrdocs/docvault/internal/config"
	"github.com/hrdocs/docvault/internal/logger"
)

// sqliteSchema mirrors the goose migrations closely enough for local
// development. The PIN columns use the same names and defaults so the
// repositories run unchanged on both backends.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	user_id             INTEGER PRIMARY KEY AUTOINCREMENT,
	login               TEXT NOT NULL UNIQUE,
	password_hash       TEXT NOT NULL,
	name                TEXT NOT NULL DEFAULT '',
	role                TEXT NOT NULL DEFAULT 'employee',
	pin_hash            TEXT NOT NULL DEFAULT '',
	pin_set             BOOLEAN NOT NULL DEFAULT FALSE,
	failed_pin_attempts INTEGER NOT NULL DEFAULT 0,
	pin_locked_until    TIMESTAMP,
	created_at          TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS documents (
	id           TEXT PRIMARY KEY,
	owner_id     INTEGER NOT NULL REFERENCES users (user_id),
	filename     TEXT NOT NULL,
	category     TEXT NOT NULL DEFAULT '',
	storage_path TEXT NOT NULL DEFAULT '',
	is_encrypted BOOLEAN NOT NULL DEFAULT FALSE,
	url          TEXT NOT NULL DEFAULT '',
	is_deleted   BOOLEAN NOT NULL DEFAULT FALSE,
	deleted_at   TIMESTAMP,
	created_at   TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents (owner_id);
CREATE INDEX IF NOT EXISTS idx_documents_deleted ON documents (is_deleted, deleted_at);
`

// NewConnectSQLite opens the local sqlite3 database used for development,
// creating the file if it does not exist yet.
func NewConnectSQLite(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	// db will be in file
	if err := createLocalDBFileIfNotExists(cfg.DSN); err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error creating database file")
		return nil, fmt.Errorf("error creating database file")
	}

	conn, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database")
		return nil, fmt.Errorf("error opening connection to DB")
	}

	// ping database
	err = conn.PingContext(ctx)
	if err != nil {
		log.Err(err).Str("func", "NewConnectSQLite").Msg("error connecting database (ping)")
		return nil, err
	}
	log.Debug().Str("func", "NewConnectSQLite").Msg("connected to database successfully")

	db := &DB{
		DB:     conn,
		driver: "sqlite3",
		logger: log,
	}

	return db, nil
}

func bootstrapSQLite(conn *sql.DB) error {
	if _, err := conn.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("error bootstrapping sqlite schema: %w", err)
	}
	return nil
}

func createLocalDBFileIfNotExists(dbFile string) error {
	if _, err := os.Stat(dbFile); os.IsNotExist(err) {
		// if not found - create
		f, err := os.Create(dbFile)
		if err != nil {
			return fmt.Errorf("error creating DB file: %w", err)
		}
		f.Close()
	}

	// file already exists
	return nil
}
