package entity

import "time"

// DefaultDepositCode is used when the upstream account exposes no
// per-location breakdown.
const DefaultDepositCode = "default"

// ProductStock is one per-location stock balance, unique per
// (product, deposit).
type ProductStock struct {
	ProductId   int64
	DepositCode string
	DepositName string
	Quantity    float64
	UpdatedAt   *time.Time
}
