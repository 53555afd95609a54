package mapper

import (
	"time"

	"erp-catalog-be/internal/entity"
	"erp-catalog-be/internal/model"
)

type ProductStockMapper struct{}

func NewProductStockMapper() *ProductStockMapper {
	return &ProductStockMapper{}
}

func (m *ProductStockMapper) ToEntity(s *model.ProductStock) *entity.ProductStock {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ProductStock{
		ProductId:   s.ProductId,
		DepositCode: s.DepositCode,
		DepositName: s.DepositName,
		Quantity:    s.Quantity,
		UpdatedAt:   updatedAt,
	}
}

func (m *ProductStockMapper) ToModel(s *entity.ProductStock) *model.ProductStock {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ProductStock{
		ProductId:   s.ProductId,
		DepositCode: s.DepositCode,
		DepositName: s.DepositName,
		Quantity:    s.Quantity,
		UpdatedAt:   updatedAt,
	}
}

func (m *ProductStockMapper) ToEntities(rows []*model.ProductStock) []*entity.ProductStock {
	entities := make([]*entity.ProductStock, len(rows))
	for i, s := range rows {
		entities[i] = m.ToEntity(s)
	}
	return entities
}
