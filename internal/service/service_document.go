// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/hrdocs/docvault/internal/logger"
	"github.com/hrdocs/docvault/internal/store"
	"github.com/hrdocs/docvault/internal/vault"
	"github.com/hrdocs/docvault/models"
)

// defaultCategory is used when an upload does not name one.
const defaultCategory = "general"

// IDGenerator produces identifiers for new document records.
type IDGenerator interface {
	Generate() string
}

// documentService is the concrete implementation of DocumentService. It
// coordinates the metadata repository and the file vault so that neither a
// blob without a record nor a record without a blob survives an operation.
type documentService struct {
	documents store.DocumentRepository
	vault     vault.FileVault
	ids       IDGenerator
	logger    *logger.Logger
}

// NewDocumentService constructs a DocumentService over the given repository
// and vault.
func NewDocumentService(documents store.DocumentRepository, fileVault vault.FileVault, ids IDGenerator, logger *logger.Logger) DocumentService {
	return &documentService{
		documents: documents,
		vault:     fileVault,
		ids:       ids,
		logger:    logger,
	}
}

// Upload implements [DocumentService]. The blob is encrypted to disk first;
// the metadata record is only inserted once the bytes are safely stored. If
// the insert fails the blob is removed again so no orphan remains.
func (s *documentService) Upload(ctx context.Context, principal models.Principal, upload DocumentUpload) (models.Document, error) {
	log := logger.FromContext(ctx)

	if upload.Filename == "" || upload.Content == nil {
		return models.Document{}, ErrInvalidDataProvided
	}

	now := time.Now().UTC()
	document := models.Document{
		ID:          s.ids.Generate(),
		OwnerID:     principal.UserID,
		Filename:    upload.Filename,
		Category:    sanitizeCategory(upload.Category),
		IsEncrypted: true,
		CreatedAt:   now,
	}
	document.StoragePath = storagePathFor(document, now)

	if err := s.vault.Store(ctx, upload.Content, document.StoragePath); err != nil {
		log.Err(err).Str("func", "documentService.Upload").Msg("storing upload failed")
		return models.Document{}, err
	}

	saved, err := s.documents.Insert(ctx, document)
	if err != nil {
		log.Err(err).Str("func", "documentService.Upload").Msg("recording upload failed, removing blob")

		loc, locErr := document.Location()
		if locErr == nil {
			if rmErr := s.vault.Remove(ctx, loc); rmErr != nil {
				log.Err(rmErr).Str("func", "documentService.Upload").Msg("failed to remove blob of unrecorded upload")
			}
		}

		return models.Document{}, fmt.Errorf("recording upload failed: %w", err)
	}

	return saved, nil
}

// Serve implements [DocumentService]. Soft-deleted documents are reported as
// not found: from the portal's point of view they no longer exist.
func (s *documentService) Serve(ctx context.Context, principal models.Principal, documentID string) (models.Document, io.ReadCloser, error) {
	log := logger.FromContext(ctx)

	document, err := s.authorizedDocument(ctx, principal, documentID)
	if err != nil {
		return models.Document{}, nil, err
	}

	loc, err := document.Location()
	if err != nil {
		log.Err(err).Str("func", "documentService.Serve").Str("document_id", document.ID).Msg("document record has no usable storage location")
		return models.Document{}, nil, fmt.Errorf("resolving document location: %w", err)
	}

	stream, err := s.vault.Open(ctx, loc)
	if err != nil {
		return models.Document{}, nil, err
	}

	return document, stream, nil
}

// List implements [DocumentService]. Employees are always pinned to their own
// documents regardless of the requested filter.
func (s *documentService) List(ctx context.Context, principal models.Principal, filter models.DocumentFilter) ([]models.Document, error) {
	if !principal.IsAdmin() {
		filter.OwnerID = principal.UserID
		filter.IncludeDeleted = false
	}

	return s.documents.List(ctx, filter)
}

// Delete implements [DocumentService].
func (s *documentService) Delete(ctx context.Context, principal models.Principal, documentID string) error {
	if _, err := s.authorizedDocument(ctx, principal, documentID); err != nil {
		return err
	}

	return s.documents.SoftDelete(ctx, documentID, time.Now().UTC())
}

// Restore implements [DocumentService]. Restore has to look up the record
// with deleted documents visible, so it bypasses authorizedDocument's
// not-found mapping for soft-deleted records.
func (s *documentService) Restore(ctx context.Context, principal models.Principal, documentID string) error {
	document, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if !principal.IsAdmin() && document.OwnerID != principal.UserID {
		return ErrForbidden
	}

	return s.documents.Restore(ctx, documentID)
}

// PurgeExpired implements [DocumentService]. Blob removal happens before the
// record delete: a record pointing at a missing blob is detectable, a blob
// without a record is invisible garbage.
func (s *documentService) PurgeExpired(ctx context.Context, cutoff time.Time) (int, error) {
	log := logger.FromContext(ctx)

	purgeable, err := s.documents.ListPurgeable(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, document := range purgeable {
		loc, err := document.Location()
		if err != nil {
			// Orphaned record: nothing on disk to remove, still purge the row.
			log.Warn().Str("document_id", document.ID).Msg("purging record without storage location")
		} else if err := s.vault.Remove(ctx, loc); err != nil {
			log.Err(err).Str("document_id", document.ID).Msg("failed to remove blob during purge, keeping record")
			continue
		}

		if err := s.documents.HardDelete(ctx, document.ID); err != nil && !errors.Is(err, store.ErrDocumentNotFound) {
			log.Err(err).Str("document_id", document.ID).Msg("failed to delete purged record")
			continue
		}
		purged++
	}

	return purged, nil
}

// authorizedDocument loads a live document and checks the caller may access
// it. Soft-deleted documents come back as store.ErrDocumentNotFound.
func (s *documentService) authorizedDocument(ctx context.Context, principal models.Principal, documentID string) (models.Document, error) {
	document, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return models.Document{}, err
	}
	if document.IsDeleted {
		return models.Document{}, store.ErrDocumentNotFound
	}
	if !principal.IsAdmin() && document.OwnerID != principal.UserID {
		return models.Document{}, ErrForbidden
	}

	return document, nil
}

// storagePathFor derives the server-chosen blob path. The layout groups blobs
// by owner, category, and upload month; only the original extension survives
// from the user-supplied filename.
func storagePathFor(document models.Document, now time.Time) string {
	ext := strings.ToLower(path.Ext(document.Filename))
	return fmt.Sprintf("%d/%s/%04d/%02d/%s%s",
		document.OwnerID, document.Category, now.Year(), int(now.Month()), document.ID, ext)
}

// sanitizeCategory keeps the category usable as a single path segment.
func sanitizeCategory(category string) string {
	category = strings.TrimSpace(strings.ToLower(category))
	if category == "" {
		return defaultCategory
	}

	category = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, category)

	return category
}
