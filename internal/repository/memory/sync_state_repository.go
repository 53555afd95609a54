package memory

import (
	"context"
	"strconv"

	"erp-catalog-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// SyncStateRepository keeps cursors in process memory. Values never
// expire: a cursor is coordination state, not a cache entry.
type SyncStateRepository struct {
	cache *cache.Cache
}

func NewSyncStateRepository() *SyncStateRepository {
	return &SyncStateRepository{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

var _ contract.SyncStateRepository = (*SyncStateRepository)(nil)

func (r *SyncStateRepository) GetNumber(ctx context.Context, key string, fallback int) (int, error) {
	x, found := r.cache.Get(key)
	if !found {
		return fallback, nil
	}
	n, err := strconv.Atoi(x.(string))
	if err != nil || n < 1 {
		return fallback, nil
	}
	return n, nil
}

func (r *SyncStateRepository) SetState(ctx context.Context, key, value string) error {
	r.cache.Set(key, value, cache.NoExpiration)
	return nil
}

func (r *SyncStateRepository) GetLastSync(ctx context.Context, key string) (*string, error) {
	x, found := r.cache.Get(key)
	if !found {
		return nil, nil
	}
	value := x.(string)
	return &value, nil
}

func (r *SyncStateRepository) SetLastSync(ctx context.Context, key, value string) error {
	r.cache.Set(key, value, cache.NoExpiration)
	return nil
}
