package store

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/hrdocs/docvault/models"
)

const (
	createUser = `INSERT INTO users (login, password_hash, name, role)
    VALUES ($1, $2, $3, $4)
    RETURNING user_id, login, password_hash, name, role, created_at;`

	findUserByLogin = `SELECT user_id, login, password_hash, name, role, created_at
    FROM users
    WHERE login = $1;`

	getPinState = `SELECT pin_hash, pin_set, failed_pin_attempts, pin_locked_until
    FROM users
    WHERE user_id = $1;`

	setPin = `UPDATE users
    SET pin_hash = $1, pin_set = TRUE, failed_pin_attempts = 0, pin_locked_until = NULL
    WHERE user_id = $2;`

	clearPinFailures = `UPDATE users
    SET failed_pin_attempts = 0, pin_locked_until = NULL
    WHERE user_id = $1;`

	// registerFailedPinAttempt increments the counter and arms the lockout in
	// one statement. The WHERE guard makes the write a no-op when another
	// request locked the account first, so the counter can never run past the
	// threshold under concurrency. Timestamps are bound as arguments instead
	// of using NOW() so the statement runs on both backends.
	registerFailedPinAttempt = `UPDATE users
    SET failed_pin_attempts = failed_pin_attempts + 1,
        pin_locked_until = CASE WHEN failed_pin_attempts + 1 >= $1 THEN $2 ELSE pin_locked_until END
    WHERE user_id = $3 AND (pin_locked_until IS NULL OR pin_locked_until <= $4)
    RETURNING failed_pin_attempts, pin_locked_until;`

	insertDocument = `INSERT INTO documents (id, owner_id, filename, category, storage_path, is_encrypted, url, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	getDocumentByID = `SELECT id, owner_id, filename, category, storage_path, is_encrypted, url, is_deleted, deleted_at, created_at
    FROM documents
    WHERE id = $1;`

	softDeleteDocument = `UPDATE documents
    SET is_deleted = TRUE, deleted_at = $1
    WHERE id = $2 AND is_deleted = FALSE;`

	restoreDocument = `UPDATE documents
    SET is_deleted = FALSE, deleted_at = NULL
    WHERE id = $1 AND is_deleted = TRUE;`

	hardDeleteDocument = `DELETE FROM documents
    WHERE id = $1;`

	listPurgeableDocuments = `SELECT id, owner_id, filename, category, storage_path, is_encrypted, url, is_deleted, deleted_at, created_at
    FROM documents
    WHERE is_deleted = TRUE AND deleted_at <= $1;`
)

// psql builds queries with $N placeholders, matching the hand-written
// statements above.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// buildListDocumentsQuery assembles the document listing SELECT from the
// optional filter fields.
func buildListDocumentsQuery(filter models.DocumentFilter) (string, []any, error) {
	builder := psql.
		Select("id", "owner_id", "filename", "category", "storage_path", "is_encrypted", "url", "is_deleted", "deleted_at", "created_at").
		From("documents").
		OrderBy("created_at DESC")

	if filter.OwnerID != 0 {
		builder = builder.Where(sq.Eq{"owner_id": filter.OwnerID})
	}
	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": filter.Category})
	}
	if !filter.IncludeDeleted {
		builder = builder.Where(sq.Eq{"is_deleted": false})
	}

	return builder.ToSql()
}

// buildResetPinsQuery assembles the bulk PIN reset UPDATE with an IN clause
// over the listed user ids.
func buildResetPinsQuery(userIDs []int64) (string, []any, error) {
	return psql.
		Update("users").
		Set("pin_hash", "").
		Set("pin_set", false).
		Set("failed_pin_attempts", 0).
		Set("pin_locked_until", nil).
		Where(sq.Eq{"user_id": userIDs}).
		ToSql()
}
