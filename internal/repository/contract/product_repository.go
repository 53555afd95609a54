package contract

import (
	"context"
	"time"

	"erp-catalog-be/internal/entity"
)

type ProductRepository interface {
	// Upsert writes the registration fields of a product (insert or
	// update on id) and marks it for re-vectorization. Quantity and
	// embedding are owned by dedicated writers and never touched here.
	Upsert(ctx context.Context, product *entity.Product) error

	// UpdateAggregateStock writes the total quantity plus the
	// representative deposit code of one product. Called only after a
	// stock update fully succeeded, so the aggregate never reflects a
	// partial one.
	UpdateAggregateStock(ctx context.Context, id int64, quantity float64, depositCode string) error

	FindById(ctx context.Context, id int64) (*entity.Product, error)

	// FindPendingVectorization returns up to limit active products
	// whose needs_vectorization flag is set.
	FindPendingVectorization(ctx context.Context, limit int) ([]*entity.Product, error)

	// UpdateEmbedding writes the vector, clears the needs_vectorization
	// flag and stamps last_vectorized_at.
	UpdateEmbedding(ctx context.Context, id int64, embedding []float32, vectorizedAt time.Time) error

	// SearchByEmbedding returns the products nearest to the query
	// vector, active status only.
	SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*entity.Product, error)
}
