package service

import (
	"github.com/hrdocs/docvault/internal/config"
	"github.com/hrdocs/docvault/internal/logger"
	"github.com/hrdocs/docvault/internal/store"
	"github.com/hrdocs/docvault/internal/utils"
	"github.com/hrdocs/docvault/internal/vault"
)

type Services struct {
	AuthService     AuthService
	DocumentService DocumentService
	PinService      PinService
}

func NewServices(storages store.Storages, fileVault vault.FileVault, cfg config.StructuredConfig, logger *logger.Logger) *Services {
	return &Services{
		AuthService:     NewAuthService(storages.UserRepository, cfg.App, logger),
		DocumentService: NewDocumentService(storages.DocumentRepository, fileVault, utils.NewUUIDGenerator(), logger),
		PinService:      NewPinService(storages.UserRepository, logger),
	}
}
