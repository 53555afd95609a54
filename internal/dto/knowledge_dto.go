package dto

import "time"

type UploadKnowledgeRequest struct {
	FileName string `json:"file_name" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

// PublishEmbedDocumentMessage is the payload published when a document
// is accepted for embedding.
type PublishEmbedDocumentMessage struct {
	FileName string `json:"file_name"`
	Content  string `json:"content"`
}

type ChunkResponse struct {
	Id        string    `json:"id"`
	FileName  string    `json:"file_name"`
	Document  string    `json:"document"`
	CreatedAt time.Time `json:"created_at"`
}
