// SPDX-License-Identifier: Apache-2.0

package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrorClassification says whether a failed database operation is worth
// retrying.
type ErrorClassification int

const (
	// NonRetryable is the default: the operation will fail the same way
	// again (constraint violations, bad SQL, unknown errors).
	NonRetryable ErrorClassification = iota

	// Retryable marks transient failures that a later attempt may clear.
	Retryable
)

// PostgresErrorClassifier implements [ErrorClassificator] over pgx error
// codes. Only the failures this store actually recovers from classify as
// Retryable: connection loss, the server refusing connections while it
// starts up, and serialization/deadlock rollbacks on the guarded PIN
// update. Constraint violations are matched where they carry meaning (the
// unique-login check in CreateUser) and stay NonRetryable here.
type PostgresErrorClassifier struct{}

func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// Classify implements [ErrorClassificator]. Anything that is not a
// *pgconn.PgError with a known transient code is NonRetryable.
func (c *PostgresErrorClassifier) Classify(err error) ErrorClassification {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return NonRetryable
	}

	switch {
	case pgerrcode.IsConnectionException(pgErr.Code):
		return Retryable
	case pgErr.Code == pgerrcode.CannotConnectNow:
		// 57P03, the server is still starting up
		return Retryable
	case pgErr.Code == pgerrcode.SerializationFailure,
		pgErr.Code == pgerrcode.DeadlockDetected:
		return Retryable
	}

	return NonRetryable
}
