package main

import (
	"context"
	"fmt"

	"github.com/hrdocs/docvault/internal/config"
	"github.com/hrdocs/docvault/internal/crypto"
	httphandler "github.com/hrdocs/docvault/internal/handler/http"
	"github.com/hrdocs/docvault/internal/logger"
	"github.com/hrdocs/docvault/internal/server"
	"github.com/hrdocs/docvault/internal/service"
	"github.com/hrdocs/docvault/internal/store"
	"github.com/hrdocs/docvault/internal/vault"
	"github.com/hrdocs/docvault/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("docvault-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	encryptionKey, err := cfg.App.EncryptionKeyBytes()
	if err != nil {
		log.Fatal().Err(err).Msg("error decoding encryption key")
	}

	cipher, err := crypto.NewVaultCipher(encryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating vault cipher")
	}

	fileVault := vault.NewFileVault(cipher, cfg.Storage.Files.VaultDir, cfg.Storage.Files.PublicDir, log.GetChildLogger())

	ctx := context.Background()
	db, err := connectDatabase(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("error migrating database")
	}

	storages := store.NewStorages(db, log.GetChildLogger())
	services := service.NewServices(*storages, fileVault, *cfg, log.GetChildLogger())
	handler := httphandler.NewHandler(services, log.GetChildLogger())

	srv, err := server.NewServer(handler.Init(), cfg.Server, log.GetChildLogger())
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	workers.NewWorkers(cfg.Workers, services.DocumentService, log.GetChildLogger()).Run()

	srv.RunServer()
}

func connectDatabase(ctx context.Context, cfg config.DB, log *logger.Logger) (*store.DB, error) {
	switch cfg.Driver {
	case "sqlite3":
		return store.NewConnectSQLite(ctx, cfg, log.GetChildLogger())
	default:
		return store.NewConnectPostgres(ctx, cfg, log.GetChildLogger())
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
