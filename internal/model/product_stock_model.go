package model

import "time"

type ProductStock struct {
	ProductId   int64  `gorm:"primaryKey;autoIncrement:false"`
	DepositCode string `gorm:"primaryKey;type:varchar(64)"`
	DepositName string
	Quantity    float64
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`

	Product Product `gorm:"foreignKey:ProductId;references:Id;constraint:OnDelete:CASCADE"`
}

func (ProductStock) TableName() string {
	return "product_stock"
}
