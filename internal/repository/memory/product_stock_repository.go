package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"erp-catalog-be/internal/entity"
	"erp-catalog-be/internal/repository/contract"
)

type stockKey struct {
	productId   int64
	depositCode string
}

type ProductStockRepository struct {
	mu   sync.RWMutex
	rows map[stockKey]*entity.ProductStock
}

func NewProductStockRepository() *ProductStockRepository {
	return &ProductStockRepository{
		rows: make(map[stockKey]*entity.ProductStock),
	}
}

var _ contract.ProductStockRepository = (*ProductStockRepository)(nil)

func (r *ProductStockRepository) Upsert(ctx context.Context, stock *entity.ProductStock) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	clone := *stock
	clone.UpdatedAt = &now
	r.rows[stockKey{stock.ProductId, stock.DepositCode}] = &clone
	return nil
}

func (r *ProductStockRepository) FindByProductId(ctx context.Context, productId int64) ([]*entity.ProductStock, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var rows []*entity.ProductStock
	for key, row := range r.rows {
		if key.productId == productId {
			clone := *row
			rows = append(rows, &clone)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].DepositCode < rows[j].DepositCode })
	return rows, nil
}
