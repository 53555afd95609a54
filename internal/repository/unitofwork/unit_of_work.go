package unitofwork

import (
	"context"

	"erp-catalog-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ProductRepository() contract.ProductRepository
	ProductStockRepository() contract.ProductStockRepository
	SyncStateRepository() contract.SyncStateRepository
	ChunkRepository() contract.ChunkRepository
}
