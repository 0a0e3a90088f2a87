package unitofwork

import "context"

// RepositoryFactory hands out one unit of work per service call.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
