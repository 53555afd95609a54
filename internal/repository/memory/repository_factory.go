package memory

import (
	"context"

	"erp-catalog-be/internal/repository/contract"
	"erp-catalog-be/internal/repository/unitofwork"
)

// RepositoryFactory is the in-memory storage backend. Repositories are
// shared across units of work; Begin/Commit/Rollback are no-ops since
// there is no transactional engine underneath.
type RepositoryFactory struct {
	products  *ProductRepository
	stock     *ProductStockRepository
	syncState *SyncStateRepository
	chunks    *ChunkRepository
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{
		products:  NewProductRepository(),
		stock:     NewProductStockRepository(),
		syncState: NewSyncStateRepository(),
		chunks:    NewChunkRepository(),
	}
}

var _ unitofwork.RepositoryFactory = (*RepositoryFactory)(nil)

func (f *RepositoryFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memoryUnitOfWork{factory: f}
}

type memoryUnitOfWork struct {
	factory *RepositoryFactory
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *memoryUnitOfWork) Commit() error                   { return nil }
func (u *memoryUnitOfWork) Rollback() error                 { return nil }

func (u *memoryUnitOfWork) ProductRepository() contract.ProductRepository {
	return u.factory.products
}

func (u *memoryUnitOfWork) ProductStockRepository() contract.ProductStockRepository {
	return u.factory.stock
}

func (u *memoryUnitOfWork) SyncStateRepository() contract.SyncStateRepository {
	return u.factory.syncState
}

func (u *memoryUnitOfWork) ChunkRepository() contract.ChunkRepository {
	return u.factory.chunks
}
