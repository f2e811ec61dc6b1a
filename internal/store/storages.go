package store

import "github.com/hrdocs/docvault/internal/logger"

// Storages bundles all repositories behind one value so the service layer
// takes a single dependency.
type Storages struct {
	UserRepository     UserRepository
	DocumentRepository DocumentRepository
}

// NewStorages wires every repository to the shared database connection.
func NewStorages(db *DB, log *logger.Logger) *Storages {
	return &Storages{
		UserRepository:     NewUserRepository(db, log),
		DocumentRepository: NewDocumentRepository(db, log),
	}
}
