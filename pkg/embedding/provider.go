package embedding

// Task types passed to providers that distinguish document and query
// embeddings (Gemini does; Ollama ignores them).
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// EmbeddingProvider generates text embeddings. Treated as a pure,
// retryable function: no side effects are visible to callers.
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
}
