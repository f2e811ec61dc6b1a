// SPDX-License-Identifier: Apache-2.0

package config

import "errors"

var (
	// ErrMissingEncryptionKey is returned when no document encryption key
	// was provided by any configuration source.
	ErrMissingEncryptionKey = errors.New("document encryption key is not set")

	// ErrInvalidEncryptionKey is returned when the provided encryption key
	// is not 64 hex characters (a 256-bit key).
	ErrInvalidEncryptionKey = errors.New("document encryption key must be 64 hex characters")

	// ErrMissingDatabaseDSN is returned when no database connection string
	// was provided.
	ErrMissingDatabaseDSN = errors.New("database connection string is not set")

	// ErrMissingTokenSignKey is returned when no JWT signing key was provided.
	ErrMissingTokenSignKey = errors.New("token sign key is not set")

	// ErrMissingServerAddress is returned when no HTTP listen address was
	// provided.
	ErrMissingServerAddress = errors.New("server address is not set")

	// ErrMissingVaultDir is returned when no vault directory was provided.
	ErrMissingVaultDir = errors.New("vault directory is not set")
)
