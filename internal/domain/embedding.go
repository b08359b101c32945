package domain

import "context"

// EmbeddingResult is a single embedding with provider token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedder turns one text into a unit vector. Used on the query path.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder turns a batch of texts into unit vectors, one call per
// batch. Used by the ingestion pipeline; per-record calls would be correct
// but far too slow.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
