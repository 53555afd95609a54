package implementation

import (
	"context"

	"erp-catalog-be/internal/entity"
	"erp-catalog-be/internal/mapper"
	"erp-catalog-be/internal/model"
	"erp-catalog-be/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductStockRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ProductStockMapper
}

func NewProductStockRepository(db *gorm.DB) contract.ProductStockRepository {
	return &ProductStockRepositoryImpl{
		db:     db,
		mapper: mapper.NewProductStockMapper(),
	}
}

func (r *ProductStockRepositoryImpl) Upsert(ctx context.Context, stock *entity.ProductStock) error {
	m := r.mapper.ToModel(stock)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "product_id"}, {Name: "deposit_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"deposit_name", "quantity", "updated_at"}),
	}).Create(m).Error
}

func (r *ProductStockRepositoryImpl) FindByProductId(ctx context.Context, productId int64) ([]*entity.ProductStock, error) {
	var models []*model.ProductStock
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productId).
		Order("deposit_code ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
