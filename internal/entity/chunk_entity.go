package entity

import (
	"time"

	"github.com/google/uuid"
)

// Chunk is one knowledge-base text fragment with its embedding. Chunks
// are created once and never updated in place; a near-duplicate is
// rejected at insertion rather than merged.
type Chunk struct {
	Id        uuid.UUID
	FileName  string
	Document  string
	Embedding []float32
	CreatedAt time.Time
	UpdatedAt *time.Time
}
