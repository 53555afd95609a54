package dto

import "time"

type SearchCatalogRequest struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit" validate:"omitempty,min=1,max=50"`
}

type ProductResponse struct {
	Id          int64      `json:"id"`
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Gtin        string     `json:"gtin,omitempty"`
	Unit        string     `json:"unit,omitempty"`
	Price       float64    `json:"price"`
	PromoPrice  float64    `json:"promo_price,omitempty"`
	Status      string     `json:"status"`
	Quantity    float64    `json:"quantity"`
	DepositCode string     `json:"deposit_code,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type ProductStockResponse struct {
	DepositCode string     `json:"deposit_code"`
	DepositName string     `json:"deposit_name,omitempty"`
	Quantity    float64    `json:"quantity"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

type ProductDetailResponse struct {
	ProductResponse
	Stocks []ProductStockResponse `json:"stocks"`
}
