// SPDX-License-Identifier: Apache-2.0

package config

import (
	"flag"
	"fmt"
	"os"
)

// getFlagsConfig parses command-line flags into a StructuredConfig. A fresh
// FlagSet is used instead of the global one so tests can call it repeatedly
// with synthetic arguments.
func getFlagsConfig() (*StructuredConfig, error) {
	return parseFlags(os.Args[1:])
}

func parseFlags(args []string) (*StructuredConfig, error) {
	cfg := &StructuredConfig{}
	fs := flag.NewFlagSet("docvault", flag.ContinueOnError)

	fs.StringVar(&cfg.Server.HTTPAddress, "a", "", "address and port of the HTTP server (host:port)")
	fs.StringVar(&cfg.Storage.DB.DSN, "d", "", "database connection string")
	fs.StringVar(&cfg.Storage.DB.Driver, "driver", "", "database driver: pgx or sqlite3")
	fs.StringVar(&cfg.Storage.Files.VaultDir, "vault-dir", "", "directory for encrypted document blobs")
	fs.StringVar(&cfg.Storage.Files.PublicDir, "public-dir", "", "root of the legacy cleartext upload tree")
	fs.StringVar(&cfg.App.EncryptionKey, "k", "", "hex-encoded 256-bit document encryption key")
	fs.StringVar(&cfg.JSONFilePath, "c", "", "path to JSON config file")
	fs.StringVar(&cfg.JSONFilePath, "config", "", "path to JSON config file (same as -c)")

	requestTimeout := fs.Duration("request-timeout", 0, "maximum duration of a single request")
	tokenDuration := fs.Duration("token-duration", 0, "JWT token lifetime")
	cleanupInterval := fs.Duration("cleanup-interval", 0, "retention worker scan interval")
	retention := fs.Duration("retention", 0, "how long soft-deleted documents are kept")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing command-line flags: %w", err)
	}

	cfg.Server.RequestTimeout = *requestTimeout
	cfg.App.TokenDuration = *tokenDuration
	cfg.Workers.CleanupInterval = *cleanupInterval
	cfg.Workers.Retention = *retention

	return cfg, nil
}
