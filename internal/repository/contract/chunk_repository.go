package contract

import (
	"context"

	"erp-catalog-be/internal/entity"
)

type ChunkRepository interface {
	Create(ctx context.Context, chunk *entity.Chunk) error

	// GetAll returns every stored chunk with its embedding. The corpus
	// is operator-curated and small, so a full scan is the intended
	// access path for duplicate suppression.
	GetAll(ctx context.Context) ([]*entity.Chunk, error)

	Count(ctx context.Context) (int64, error)
}
