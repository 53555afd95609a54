package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Product struct {
	Id           int64  `gorm:"primaryKey;autoIncrement:false"`
	Code         string `gorm:"index"`
	Name         string `gorm:"type:text;not null"`
	Sku          string
	Gtin         string
	Unit         string
	Price        float64
	PromoPrice   float64
	CostPrice    float64
	AvgCostPrice float64
	Location     string
	Status       string `gorm:"type:varchar(1);index"`
	Quantity     float64
	DepositCode  string

	SourceCreatedAt *time.Time
	RawPayload      datatypes.JSON

	Embedding          *pgvector.Vector `gorm:"type:vector(768)"` // Gemini text-embedding-004 uses 768 dimensions
	NeedsVectorization bool             `gorm:"default:true;index"`
	LastVectorizedAt   *time.Time

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (Product) TableName() string {
	return "products"
}
