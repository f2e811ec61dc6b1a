package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hrdocs/docvault/internal/logger"
	"github.com/hrdocs/docvault/models"
)

// documentRepository is the SQL-backed implementation of [DocumentRepository].
// It manages document metadata only; blob contents are the vault's concern.
type documentRepository struct {
	logger *logger.Logger
	db     *DB
}

// NewDocumentRepository constructs a [DocumentRepository] backed by the
// provided database connection and logger.
func NewDocumentRepository(db *DB, logger *logger.Logger) DocumentRepository {
	logger.Debug().Msg("creating document repository")
	return &documentRepository{
		db:     db,
		logger: logger,
	}
}

// Insert persists a new document metadata record.
func (r *documentRepository) Insert(ctx context.Context, document models.Document) (models.Document, error) {
	log := logger.FromContext(ctx)

	_, err := r.db.ExecContext(ctx, insertDocument,
		document.ID,
		document.OwnerID,
		document.Filename,
		document.Category,
		document.StoragePath,
		document.IsEncrypted,
		document.URL,
		document.CreatedAt,
	)
	if err != nil {
		log.Err(err).Str("func", "*documentRepository.Insert").Msg("error executing insert")
		return models.Document{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return document, nil
}

// GetByID retrieves a single document record, soft-deleted ones included.
// The caller decides whether a deleted document is still servable.
func (r *documentRepository) GetByID(ctx context.Context, documentID string) (models.Document, error) {
	log := logger.FromContext(ctx)

	row := r.db.QueryRowContext(ctx, getDocumentByID, documentID)

	document, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Document{}, ErrDocumentNotFound
		}
		log.Err(err).Str("func", "*documentRepository.GetByID").Msg("error: scanning error")
		return models.Document{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return document, nil
}

// List returns the documents matching the filter, newest first.
func (r *documentRepository) List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildListDocumentsQuery(filter)
	if err != nil {
		log.Err(err).Str("func", "*documentRepository.List").Msg("error building query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*documentRepository.List").Msg("error executing query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// SoftDelete marks the document deleted. Already-deleted and unknown ids both
// report [ErrDocumentNotFound] since the guarded update touches no row.
func (r *documentRepository) SoftDelete(ctx context.Context, documentID string, deletedAt time.Time) error {
	return r.execGuarded(ctx, "*documentRepository.SoftDelete", softDeleteDocument, deletedAt, documentID)
}

// Restore undoes a soft delete.
func (r *documentRepository) Restore(ctx context.Context, documentID string) error {
	return r.execGuarded(ctx, "*documentRepository.Restore", restoreDocument, documentID)
}

// HardDelete removes the metadata record permanently.
func (r *documentRepository) HardDelete(ctx context.Context, documentID string) error {
	return r.execGuarded(ctx, "*documentRepository.HardDelete", hardDeleteDocument, documentID)
}

// ListPurgeable returns soft-deleted documents whose deletion timestamp is at
// or before the cutoff.
func (r *documentRepository) ListPurgeable(ctx context.Context, cutoff time.Time) ([]models.Document, error) {
	log := logger.FromContext(ctx)

	rows, err := r.db.QueryContext(ctx, listPurgeableDocuments, cutoff)
	if err != nil {
		log.Err(err).Str("func", "*documentRepository.ListPurgeable").Msg("error executing query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// execGuarded runs a DML statement that must touch exactly one row and maps
// a zero-row result to [ErrDocumentNotFound].
func (r *documentRepository) execGuarded(ctx context.Context, funcName, query string, args ...any) error {
	log := logger.FromContext(ctx)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("error executing statement")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrDocumentNotFound
	}

	return nil
}

// scanDocument maps one result row onto a models.Document, converting the
// nullable deleted_at column.
func scanDocument(scan func(dest ...any) error) (models.Document, error) {
	var (
		document  models.Document
		deletedAt sql.NullTime
	)
	err := scan(
		&document.ID,
		&document.OwnerID,
		&document.Filename,
		&document.Category,
		&document.StoragePath,
		&document.IsEncrypted,
		&document.URL,
		&document.IsDeleted,
		&deletedAt,
		&document.CreatedAt,
	)
	if err != nil {
		return models.Document{}, err
	}
	if deletedAt.Valid {
		document.DeletedAt = &deletedAt.Time
	}

	return document, nil
}

func collectDocuments(rows *sql.Rows) ([]models.Document, error) {
	documents := make([]models.Document, 0)
	for rows.Next() {
		document, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		documents = append(documents, document)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return documents, nil
}
