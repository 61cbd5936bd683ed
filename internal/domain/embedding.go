package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Generator produces free-form text from a prompt. Implementations own
// their retry/backoff policy; callers see either text or a final error.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
