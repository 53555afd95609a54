package implementation

import (
	"context"
	"errors"
	"time"

	"erp-catalog-be/internal/entity"
	"erp-catalog-be/internal/mapper"
	"erp-catalog-be/internal/model"
	"erp-catalog-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProductMapper
}

func NewProductRepository(db *gorm.DB) contract.ProductRepository {
	return &ProductRepositoryImpl{
		db:     db,
		mapper: mapper.NewProductMapper(),
	}
}

// registrationColumns are the fields overwritten by a catalog upsert.
// Quantity and embedding are deliberately absent: they have dedicated
// writers and must survive registration refreshes untouched.
var registrationColumns = []string{
	"code", "name", "sku", "gtin", "unit",
	"price", "promo_price", "cost_price", "avg_cost_price",
	"location", "status", "source_created_at", "raw_payload",
	"needs_vectorization", "updated_at",
}

func (r *ProductRepositoryImpl) Upsert(ctx context.Context, product *entity.Product) error {
	m := r.mapper.ToModel(product)
	m.NeedsVectorization = true
	m.Embedding = nil

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(registrationColumns),
	}).Create(m).Error
}

func (r *ProductRepositoryImpl) UpdateAggregateStock(ctx context.Context, id int64, quantity float64, depositCode string) error {
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"quantity":     quantity,
			"deposit_code": depositCode,
			"updated_at":   time.Now(),
		}).Error
}

func (r *ProductRepositoryImpl) FindById(ctx context.Context, id int64) (*entity.Product, error) {
	var m model.Product
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ProductRepositoryImpl) FindPendingVectorization(ctx context.Context, limit int) ([]*entity.Product, error) {
	if limit <= 0 {
		limit = 10
	}
	var models []*model.Product
	err := r.db.WithContext(ctx).
		Where("needs_vectorization = ?", true).
		Where("status = ?", entity.ProductStatusActive).
		Order("updated_at ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ProductRepositoryImpl) UpdateEmbedding(ctx context.Context, id int64, embedding []float32, vectorizedAt time.Time) error {
	v := pgvector.NewVector(embedding)
	return r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"embedding":           &v,
			"needs_vectorization": false,
			"last_vectorized_at":  vectorizedAt,
		}).Error
}

func (r *ProductRepositoryImpl) SearchByEmbedding(ctx context.Context, embedding []float32, limit int) ([]*entity.Product, error) {
	if limit <= 0 {
		limit = 5
	}
	var models []*model.Product
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.ProductStatusActive).
		Where("embedding IS NOT NULL").
		Order(gorm.Expr("embedding <=> ?", pgvector.NewVector(embedding))).
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
