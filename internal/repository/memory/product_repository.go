package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"erp-catalog-be/internal/entity"
	"erp-catalog-be/internal/repository/contract"
	"erp-catalog-be/pkg/similarity"
)

// ProductRepository is the in-memory variant of the product store,
// used by the local backend and by tests. Same contract, no database.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[int64]*entity.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[int64]*entity.Product),
	}
}

var _ contract.ProductRepository = (*ProductRepository)(nil)

func (r *ProductRepository) Upsert(ctx context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	stored, ok := r.products[product.Id]
	if !ok {
		stored = &entity.Product{Id: product.Id, CreatedAt: now}
		r.products[product.Id] = stored
	}

	stored.Code = product.Code
	stored.Name = product.Name
	stored.Sku = product.Sku
	stored.Gtin = product.Gtin
	stored.Unit = product.Unit
	stored.Price = product.Price
	stored.PromoPrice = product.PromoPrice
	stored.CostPrice = product.CostPrice
	stored.AvgCostPrice = product.AvgCostPrice
	stored.Location = product.Location
	stored.Status = product.Status
	stored.SourceCreatedAt = product.SourceCreatedAt
	stored.RawPayload = product.RawPayload
	stored.NeedsVectorization = true
	stored.UpdatedAt = &now
	return nil
}

func (r *ProductRepository) UpdateAggregateStock(ctx context.Context, id int64, quantity float64, depositCode string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[id]
	if !ok {
		return nil
	}
	now := time.Now()
	stored.Quantity = quantity
	stored.DepositCode = depositCode
	stored.UpdatedAt = &now
	return nil
}

func (r *ProductRepository) FindById(ctx context.Context, id int64) (*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	clone := *stored
	return &clone, nil
}

func (r *ProductRepository) FindPendingVectorization(ctx context.Context, limit int) ([]*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	var pending []*entity.Product
	for _, p := range r.products {
		if p.NeedsVectorization && p.Status == entity.ProductStatusActive {
			clone := *p
			pending = append(pending, &clone)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Id < pending[j].Id })
	if len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (r *ProductRepository) UpdateEmbedding(ctx context.Context, id int64, embedding []float32, vectorizedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[id]
	if !ok {
		return nil
	}
	stored.Embedding = embedding
	stored.NeedsVectorization = false
	stored.LastVectorizedAt = &vectorizedAt
	return nil
}

func (r *ProductRepository) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*entity.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if limit <= 0 {
		limit = 5
	}

	type scored struct {
		product *entity.Product
		score   float64
	}
	var matches []scored
	for _, p := range r.products {
		if p.Status != entity.ProductStatusActive || len(p.Embedding) == 0 {
			continue
		}
		clone := *p
		matches = append(matches, scored{&clone, similarity.Cosine(p.Embedding, embedding)})
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	if len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]*entity.Product, len(matches))
	for i, m := range matches {
		results[i] = m.product
	}
	return results, nil
}
