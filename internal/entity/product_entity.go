package entity

import (
	"strconv"
	"time"
)

// Product statuses as reported by the upstream ERP.
const (
	ProductStatusActive   = "A"
	ProductStatusInactive = "I"
	ProductStatusExcluded = "E"
)

// Product mirrors one upstream catalog record. Id is assigned upstream
// and stable across syncs. Quantity holds the aggregate of the most
// recent successfully-applied stock update.
type Product struct {
	Id           int64
	Code         string
	Name         string
	Sku          string
	Gtin         string
	Unit         string
	Price        float64
	PromoPrice   float64
	CostPrice    float64
	AvgCostPrice float64
	Location     string
	Status       string
	Quantity     float64
	DepositCode  string

	// SourceCreatedAt is the upstream-supplied registration date,
	// parsed from its DD/MM/YYYY HH:MM:SS textual form.
	SourceCreatedAt *time.Time

	// RawPayload keeps the undecoded upstream record for debugging
	// account-specific field shapes.
	RawPayload []byte

	Embedding          []float32
	NeedsVectorization bool
	LastVectorizedAt   *time.Time

	CreatedAt time.Time
	UpdatedAt *time.Time
}

// EmbeddingText composes the short description sent to the embedding
// provider.
func (p *Product) EmbeddingText() string {
	return "Product: " + p.Name + ". Code: " + p.Code + ". Price: " + strconv.FormatFloat(p.Price, 'f', 2, 64) + "."
}
