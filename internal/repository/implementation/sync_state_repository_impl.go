package implementation

import (
	"context"
	"errors"
	"strconv"

	"erp-catalog-be/internal/model"
	"erp-catalog-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SyncStateRepositoryImpl struct {
	db *gorm.DB
}

func NewSyncStateRepository(db *gorm.DB) contract.SyncStateRepository {
	return &SyncStateRepositoryImpl{db: db}
}

func (r *SyncStateRepositoryImpl) get(ctx context.Context, key string) (*string, error) {
	var m model.SyncState
	if err := r.db.WithContext(ctx).First(&m, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &m.Value, nil
}

func (r *SyncStateRepositoryImpl) set(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model.SyncState{Key: key, Value: value}).Error
}

func (r *SyncStateRepositoryImpl) GetNumber(ctx context.Context, key string, fallback int) (int, error) {
	raw, err := r.get(ctx, key)
	if err != nil {
		return 0, err
	}
	if raw == nil {
		return fallback, nil
	}
	n, err := strconv.Atoi(*raw)
	if err != nil || n < 1 {
		return fallback, nil
	}
	return n, nil
}

func (r *SyncStateRepositoryImpl) SetState(ctx context.Context, key, value string) error {
	return r.set(ctx, key, value)
}

func (r *SyncStateRepositoryImpl) GetLastSync(ctx context.Context, key string) (*string, error) {
	return r.get(ctx, key)
}

func (r *SyncStateRepositoryImpl) SetLastSync(ctx context.Context, key, value string) error {
	return r.set(ctx, key, value)
}
