package service

import (
	"context"
	"io"
	"time"

	"github.com/hrdocs/docvault/models"
)

// AuthService handles account registration, credential verification, and JWT
// token lifecycle.
type AuthService interface {
	RegisterUser(ctx context.Context, user models.User) (models.User, error)
	Login(ctx context.Context, user models.User) (models.User, error)
	CreateToken(ctx context.Context, user models.User) (models.Token, error)
	ParseToken(ctx context.Context, tokenString string) (models.Token, error)
}

// DocumentUpload carries everything needed to store a new document.
type DocumentUpload struct {
	Filename string
	Category string
	Content  io.Reader
}

// DocumentService manages the document lifecycle: encrypted upload, authorized
// streaming, listing, soft deletion, and retention purging.
type DocumentService interface {
	// Upload encrypts the content into the vault and records the metadata.
	Upload(ctx context.Context, principal models.Principal, upload DocumentUpload) (models.Document, error)

	// Serve authorizes the caller and opens a cleartext stream of the
	// document. The caller must close the returned reader.
	Serve(ctx context.Context, principal models.Principal, documentID string) (models.Document, io.ReadCloser, error)

	// List returns documents visible to the caller. Employees only ever see
	// their own; admins may filter by any owner.
	List(ctx context.Context, principal models.Principal, filter models.DocumentFilter) ([]models.Document, error)

	// Delete soft-deletes a document. The blob stays until the retention
	// worker purges it.
	Delete(ctx context.Context, principal models.Principal, documentID string) error

	// Restore undoes a soft delete within the retention window.
	Restore(ctx context.Context, principal models.Principal, documentID string) error

	// PurgeExpired permanently removes documents soft-deleted before the
	// cutoff, blob first, then the metadata record. Returns how many were
	// purged.
	PurgeExpired(ctx context.Context, cutoff time.Time) (int, error)
}

// PinService implements the document-PIN gate: a per-user 4-digit code that
// guards document access in the portal UI.
type PinService interface {
	// Status reports whether the caller has a PIN and whether it is locked.
	Status(ctx context.Context, userID int64) (models.PinStatus, error)

	// Set stores a new PIN. Changing an existing PIN requires the current one.
	Set(ctx context.Context, userID int64, pin, currentPin string) error

	// Verify checks the submitted PIN against the stored hash, enforcing the
	// attempt limit and lockout.
	Verify(ctx context.Context, userID int64, pin string) error

	// Reset clears the PIN state for the listed users. Admin only.
	Reset(ctx context.Context, principal models.Principal, userIDs []int64) (int64, error)
}
