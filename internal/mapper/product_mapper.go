package mapper

import (
	"time"

	"erp-catalog-be/internal/entity"
	"erp-catalog-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type ProductMapper struct{}

func NewProductMapper() *ProductMapper {
	return &ProductMapper{}
}

func (m *ProductMapper) ToEntity(p *model.Product) *entity.Product {
	if p == nil {
		return nil
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	var embedding []float32
	if p.Embedding != nil {
		embedding = p.Embedding.Slice()
	}

	return &entity.Product{
		Id:                 p.Id,
		Code:               p.Code,
		Name:               p.Name,
		Sku:                p.Sku,
		Gtin:               p.Gtin,
		Unit:               p.Unit,
		Price:              p.Price,
		PromoPrice:         p.PromoPrice,
		CostPrice:          p.CostPrice,
		AvgCostPrice:       p.AvgCostPrice,
		Location:           p.Location,
		Status:             p.Status,
		Quantity:           p.Quantity,
		DepositCode:        p.DepositCode,
		SourceCreatedAt:    p.SourceCreatedAt,
		RawPayload:         []byte(p.RawPayload),
		Embedding:          embedding,
		NeedsVectorization: p.NeedsVectorization,
		LastVectorizedAt:   p.LastVectorizedAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          updatedAt,
	}
}

func (m *ProductMapper) ToModel(p *entity.Product) *model.Product {
	if p == nil {
		return nil
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	var embedding *pgvector.Vector
	if len(p.Embedding) > 0 {
		v := pgvector.NewVector(p.Embedding)
		embedding = &v
	}

	return &model.Product{
		Id:                 p.Id,
		Code:               p.Code,
		Name:               p.Name,
		Sku:                p.Sku,
		Gtin:               p.Gtin,
		Unit:               p.Unit,
		Price:              p.Price,
		PromoPrice:         p.PromoPrice,
		CostPrice:          p.CostPrice,
		AvgCostPrice:       p.AvgCostPrice,
		Location:           p.Location,
		Status:             p.Status,
		Quantity:           p.Quantity,
		DepositCode:        p.DepositCode,
		SourceCreatedAt:    p.SourceCreatedAt,
		RawPayload:         datatypes.JSON(p.RawPayload),
		Embedding:          embedding,
		NeedsVectorization: p.NeedsVectorization,
		LastVectorizedAt:   p.LastVectorizedAt,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          updatedAt,
	}
}

func (m *ProductMapper) ToEntities(products []*model.Product) []*entity.Product {
	entities := make([]*entity.Product, len(products))
	for i, p := range products {
		entities[i] = m.ToEntity(p)
	}
	return entities
}
