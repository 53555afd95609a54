package memory

import (
	"context"
	"sync"
	"time"

	"erp-catalog-be/internal/entity"
	"erp-catalog-be/internal/repository/contract"

	"github.com/google/uuid"
)

type ChunkRepository struct {
	mu     sync.RWMutex
	chunks []*entity.Chunk
}

func NewChunkRepository() *ChunkRepository {
	return &ChunkRepository{}
}

var _ contract.ChunkRepository = (*ChunkRepository)(nil)

func (r *ChunkRepository) Create(ctx context.Context, chunk *entity.Chunk) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if chunk.Id == uuid.Nil {
		chunk.Id = uuid.New()
	}
	if chunk.CreatedAt.IsZero() {
		chunk.CreatedAt = time.Now()
	}
	clone := *chunk
	r.chunks = append(r.chunks, &clone)
	return nil
}

func (r *ChunkRepository) GetAll(ctx context.Context) ([]*entity.Chunk, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*entity.Chunk, len(r.chunks))
	for i, c := range r.chunks {
		clone := *c
		all[i] = &clone
	}
	return all, nil
}

func (r *ChunkRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.chunks)), nil
}
