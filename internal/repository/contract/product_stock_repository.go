package contract

import (
	"context"

	"erp-catalog-be/internal/entity"
)

type ProductStockRepository interface {
	// Upsert writes one per-location balance (insert or update on the
	// composite product/deposit key).
	Upsert(ctx context.Context, stock *entity.ProductStock) error

	FindByProductId(ctx context.Context, productId int64) ([]*entity.ProductStock, error)
}
