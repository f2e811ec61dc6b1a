// SPDX-License-Identifier: Apache-2.0

// Package vault persists document bytes on disk. New documents are written
// as encrypted blobs under the vault root; pre-migration documents are read
// as cleartext from the legacy public root. The two roots are distinct base
// directories and are never conflated: a resolved [models.StorageLocation]
// carries the tag that selects between them.
package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hrdocs/docvault/internal/crypto"
	"github.com/hrdocs/docvault/internal/logger"
	"github.com/hrdocs/docvault/models"
)

// Sentinel errors returned by vault operations. Callers match them with
// [errors.Is]; none of them carry filesystem paths, which must never reach
// a client-facing message.
var (
	// ErrStorageWrite is returned when persisting an encrypted blob fails
	// (disk full, permission denied, ...). Any partially written file has
	// already been removed; the caller must not register the document.
	ErrStorageWrite = errors.New("vault storage write failed")

	// ErrFileMissing is returned when a document record resolves to a path
	// that does not exist on disk. Distinct from an unknown document ID:
	// this one signals an orphaned record and is logged as such.
	ErrFileMissing = errors.New("stored file is missing")

	// ErrInvalidPath is returned for relative paths that escape their base
	// directory. Storage paths are server-chosen, so hitting this means a
	// corrupted or tampered record.
	ErrInvalidPath = errors.New("storage path escapes the vault root")
)

// FileVault writes, opens, and removes document artifacts.
type FileVault interface {
	// Store encrypts src into a blob at relPath under the vault root,
	// creating parent directories as needed. On failure no partial file is
	// left behind. The caller is responsible for choosing unique paths.
	Store(ctx context.Context, src io.Reader, relPath string) error

	// Open returns a stream of the original file content for loc:
	// a decrypting reader for vault blobs, a plain file for legacy paths.
	// The caller owns the returned reader and must close it.
	Open(ctx context.Context, loc models.StorageLocation) (io.ReadCloser, error)

	// Stat verifies that the artifact for loc exists on disk.
	Stat(ctx context.Context, loc models.StorageLocation) error

	// Remove deletes the artifact for loc. A file that is already gone is
	// not an error: removal runs during purge, which must be idempotent.
	Remove(ctx context.Context, loc models.StorageLocation) error
}

// fileVault is the local-filesystem implementation of [FileVault].
type fileVault struct {
	cipher     crypto.VaultCipher
	vaultRoot  string
	publicRoot string
	logger     *logger.Logger
}

// NewFileVault constructs a [FileVault] over the two base directories.
// vaultRoot holds encrypted blobs; publicRoot is the legacy cleartext
// upload tree consumed read-only.
func NewFileVault(cipher crypto.VaultCipher, vaultRoot, publicRoot string, logger *logger.Logger) FileVault {
	logger.Debug().Str("vault_root", vaultRoot).Str("public_root", publicRoot).Msg("creating file vault")
	return &fileVault{
		cipher:     cipher,
		vaultRoot:  vaultRoot,
		publicRoot: publicRoot,
		logger:     logger,
	}
}

// Store implements [FileVault].
func (v *fileVault) Store(ctx context.Context, src io.Reader, relPath string) error {
	log := logger.FromContext(ctx)

	absPath, err := v.resolve(v.vaultRoot, relPath)
	if err != nil {
		log.Err(err).Str("func", "fileVault.Store").Msg("refusing to store outside the vault root")
		return err
	}

	if err := v.cipher.EncryptStream(src, absPath); err != nil {
		log.Err(err).Str("func", "fileVault.Store").Msg("encrypting upload to disk failed")

		// A truncated blob must never be readable later.
		if rmErr := os.Remove(absPath); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Err(rmErr).Str("func", "fileVault.Store").Msg("failed to remove partial blob")
		}

		return fmt.Errorf("%w: %w", ErrStorageWrite, err)
	}

	return nil
}

// Open implements [FileVault].
func (v *fileVault) Open(ctx context.Context, loc models.StorageLocation) (io.ReadCloser, error) {
	log := logger.FromContext(ctx)

	absPath, err := v.locate(loc)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			log.Error().Str("func", "fileVault.Open").Str("path", absPath).Msg("document record points at a missing file")
			return nil, ErrFileMissing
		}
		return nil, err
	}

	switch loc.Kind {
	case models.StorageVault:
		return v.cipher.DecryptStream(absPath)
	default:
		// Legacy artifacts predate the vault and are stored cleartext.
		return os.Open(absPath)
	}
}

// Stat implements [FileVault].
func (v *fileVault) Stat(ctx context.Context, loc models.StorageLocation) error {
	absPath, err := v.locate(loc)
	if err != nil {
		return err
	}

	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return ErrFileMissing
		}
		return err
	}

	return nil
}

// Remove implements [FileVault].
func (v *fileVault) Remove(ctx context.Context, loc models.StorageLocation) error {
	log := logger.FromContext(ctx)

	absPath, err := v.locate(loc)
	if err != nil {
		return err
	}

	if err := os.Remove(absPath); err != nil && !os.IsNotExist(err) {
		log.Err(err).Str("func", "fileVault.Remove").Msg("failed to remove stored file")
		return err
	}

	return nil
}

// locate maps a tagged location onto its base directory.
func (v *fileVault) locate(loc models.StorageLocation) (string, error) {
	switch loc.Kind {
	case models.StorageVault:
		return v.resolve(v.vaultRoot, loc.Path)
	case models.StorageLegacy:
		return v.resolve(v.publicRoot, loc.Path)
	default:
		return "", fmt.Errorf("%w: unknown storage kind %d", ErrInvalidPath, loc.Kind)
	}
}

// resolve joins relPath onto root and rejects anything that climbs out of
// it after cleaning.
func (v *fileVault) resolve(root, relPath string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(relPath))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", ErrInvalidPath
	}

	return filepath.Join(root, cleaned), nil
}
