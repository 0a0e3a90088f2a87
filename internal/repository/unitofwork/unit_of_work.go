package unitofwork

import (
	"context"

	"rich-text-bridge/internal/repository/contract"
)

// UnitOfWork groups document reads and writes. Without Begin every call runs
// on its own connection.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	DocumentRepository() contract.DocumentRepository
}
