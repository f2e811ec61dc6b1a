// SPDX-License-Identifier: Apache-2.0

package models

import (
	"errors"
	"strings"
	"time"
)

// ErrNoStorageLocation is returned by [Document.Location] when a record has
// neither a vault storage path nor a recognisable legacy URL. Such a record
// is an orphan: its metadata exists but its bytes cannot be located.
var ErrNoStorageLocation = errors.New("document has no storage location")

// legacyURLPrefix is the only URL shape honoured for pre-migration records.
// Those documents were stored as cleartext under the public upload root.
const legacyURLPrefix = "/uploads/"

// Document is the metadata record for one stored file. The bytes themselves
// live either in the encrypted vault (StoragePath set, IsEncrypted true) or
// under the legacy public root (URL set, cleartext). Exactly one of the two
// locations is authoritative; [Document.Location] resolves which.
type Document struct {
	// ID is the opaque unique identifier (a server-generated UUID).
	ID string `json:"id"`

	// OwnerID references the user the document belongs to.
	OwnerID int64 `json:"owner_id"`

	// Filename is the original, user-supplied name. It is untrusted input:
	// used for the Content-Disposition header and MIME lookup only, never
	// for locating bytes on disk.
	Filename string `json:"filename"`

	// Category is the HR document category (contract, payslip, ...).
	Category string `json:"category"`

	// StoragePath is the server-chosen path of the encrypted blob,
	// relative to the vault root. Never derived from Filename and never
	// exposed to clients.
	StoragePath string `json:"-"`

	// IsEncrypted reports whether the stored artifact is an encrypted
	// blob. True for every vault-stored document; false for legacy ones.
	IsEncrypted bool `json:"is_encrypted"`

	// URL is the legacy public path ("/uploads/...") for pre-migration
	// cleartext documents. Empty for vault-stored documents.
	URL string `json:"url,omitempty"`

	// IsDeleted marks a soft-deleted document. The blob is kept until the
	// retention worker purges the record permanently.
	IsDeleted bool `json:"is_deleted"`

	// DeletedAt is the soft-delete timestamp, nil while the document is live.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`

	// CreatedAt is the upload timestamp.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the Document model.
func (d Document) TableName() string {
	return "documents"
}

// StorageKind tags a resolved storage location.
type StorageKind int

const (
	// StorageVault marks an encrypted blob under the vault root.
	StorageVault StorageKind = iota

	// StorageLegacy marks a cleartext file under the public upload root.
	StorageLegacy
)

// StorageLocation is the resolved, tagged location of a document's bytes.
// Modelling the two path schemes as a tagged value (instead of a boolean
// plus two optional strings) keeps the file gateway's dispatch exhaustive.
type StorageLocation struct {
	// Kind selects the base directory and whether decryption applies.
	Kind StorageKind

	// Path is relative to the root implied by Kind.
	Path string
}

// Location resolves the authoritative storage location of the document.
//
// StoragePath, when set, wins and implies the encrypted vault. Otherwise a
// legacy "/uploads/..." URL resolves to the cleartext public root. A record
// with neither yields [ErrNoStorageLocation].
func (d Document) Location() (StorageLocation, error) {
	if d.StoragePath != "" {
		return StorageLocation{Kind: StorageVault, Path: d.StoragePath}, nil
	}

	if strings.HasPrefix(d.URL, legacyURLPrefix) {
		// "/uploads/USER/..." lives at <public root>/uploads/USER/...
		return StorageLocation{Kind: StorageLegacy, Path: strings.TrimPrefix(d.URL, "/")}, nil
	}

	return StorageLocation{}, ErrNoStorageLocation
}

// DocumentFilter narrows document listings. Zero values mean "no filter";
// OwnerID is always enforced for non-admin callers by the service layer.
type DocumentFilter struct {
	OwnerID        int64
	Category       string
	IncludeDeleted bool
}
