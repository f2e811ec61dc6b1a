// SPDX-License-Identifier: Apache-2.0

package config

import (
	"encoding/hex"
	"fmt"
)

const encryptionKeyHexLen = 64 // 32 bytes, hex-encoded

// validateConfig checks that the merged configuration carries everything the
// server cannot run without. The encryption key is validated strictly: a
// missing or malformed key must stop startup rather than fall back to some
// built-in value, otherwise every deployment would silently share a key.
func validateConfig(cfg *StructuredConfig) error {
	if cfg.App.EncryptionKey == "" {
		return ErrMissingEncryptionKey
	}
	if len(cfg.App.EncryptionKey) != encryptionKeyHexLen {
		return fmt.Errorf("%w: got %d characters", ErrInvalidEncryptionKey, len(cfg.App.EncryptionKey))
	}
	if _, err := hex.DecodeString(cfg.App.EncryptionKey); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidEncryptionKey, err)
	}

	if cfg.App.TokenSignKey == "" {
		return ErrMissingTokenSignKey
	}
	if cfg.Storage.DB.DSN == "" {
		return ErrMissingDatabaseDSN
	}
	if cfg.Server.HTTPAddress == "" {
		return ErrMissingServerAddress
	}
	if cfg.Storage.Files.VaultDir == "" {
		return ErrMissingVaultDir
	}

	return nil
}
