package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hrdocs/docvault/internal/config"
	"github.com/hrdocs/docvault/internal/logger"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// NewConnectPostgres opens a pgx connection pool and verifies it with a ping.
// Transient ping failures (connection exceptions, cannot-connect-now) are
// retried a few times before giving up, which covers the common case of the
// database container still starting up.
func NewConnectPostgres(ctx context.Context, cfg config.DB, log *logger.Logger) (*DB, error) {
	conn, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		log.Err(err).Str("func", "NewConnectPostgres").Msg("error occurred during database connection")
		return nil, fmt.Errorf("error occurred during database connection: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(4)

	classifier := NewPostgresErrorClassifier()

	const pingAttempts = 3
	for attempt := 1; ; attempt++ {
		err = conn.PingContext(ctx)
		if err == nil {
			break
		}
		if attempt >= pingAttempts || classifier.Classify(err) != Retryable {
			log.Err(err).Str("func", "NewConnectPostgres").Msg("error connecting database (ping)")
			return nil, err
		}
		log.Warn().Err(err).Str("func", "NewConnectPostgres").Int("attempt", attempt).Msg("database ping failed, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second * time.Duration(attempt)):
		}
	}
	log.Info().Str("func", "NewConnectPostgres").Msg("connected to database successfully")

	db := &DB{
		DB:                 conn,
		driver:             "pgx",
		logger:             log,
		errorClassificator: classifier,
	}

	return db, nil
}

func postgresError(err error) string {
	var pgErr *pgconn.PgError
	// if postgres returns error
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}
