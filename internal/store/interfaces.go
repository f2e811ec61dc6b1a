package store

import (
	"context"
	"time"

	"github.com/hrdocs/docvault/models"
)

// UserRepository provides persistence for user accounts and their
// document-PIN state.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindUserByLogin(ctx context.Context, user models.User) (models.User, error)

	// GetPinState returns the PIN columns for a single user.
	GetPinState(ctx context.Context, userID int64) (models.PinState, error)

	// SetPin stores a new PIN hash and clears any failure state.
	SetPin(ctx context.Context, userID int64, pinHash string) error

	// ClearPinFailures resets the failed-attempt counter and lockout after a
	// successful verification.
	ClearPinFailures(ctx context.Context, userID int64) error

	// RegisterFailedPinAttempt atomically increments the failure counter and,
	// when the incremented value reaches maxAttempts, sets the lockout to
	// lockUntil. The update is conditional on the account not being locked at
	// the time of the write, so concurrent failures cannot push the counter
	// past the threshold. Returns the post-update state.
	RegisterFailedPinAttempt(ctx context.Context, userID int64, maxAttempts int, lockUntil, now time.Time) (models.PinState, error)

	// ResetPins removes the PIN and failure state for every listed user.
	// Returns the number of accounts actually reset.
	ResetPins(ctx context.Context, userIDs []int64) (int64, error)
}

// DocumentRepository provides persistence for document metadata records.
// Blob contents live in the file vault; only paths and attributes are
// stored here.
type DocumentRepository interface {
	Insert(ctx context.Context, document models.Document) (models.Document, error)
	GetByID(ctx context.Context, documentID string) (models.Document, error)
	List(ctx context.Context, filter models.DocumentFilter) ([]models.Document, error)

	// SoftDelete marks a document as deleted without touching its blob.
	SoftDelete(ctx context.Context, documentID string, deletedAt time.Time) error

	// Restore undoes a soft delete.
	Restore(ctx context.Context, documentID string) error

	// HardDelete removes the metadata record permanently. The caller is
	// responsible for removing the blob first.
	HardDelete(ctx context.Context, documentID string) error

	// ListPurgeable returns soft-deleted documents whose deletion timestamp
	// is at or before the cutoff.
	ListPurgeable(ctx context.Context, cutoff time.Time) ([]models.Document, error)
}

// ErrorClassificator decides whether a failed database operation is worth
// retrying.
type ErrorClassificator interface {
	Classify(err error) ErrorClassification
}
