package retrieve

import (
	"context"

	"github.com/toonrec/toonrec/internal/domain"
)

// Repository is the catalog access the router needs from the storage layer.
type Repository interface {
	// ByAttributes returns up to limit webtoons matching the filters,
	// ordered by likes descending.
	ByAttributes(ctx context.Context, f domain.Filters, limit int) ([]domain.Webtoon, error)

	// Semantic runs a vector similarity search and returns up to limit
	// webtoons with Similarity populated, dropping results below minScore.
	Semantic(ctx context.Context, vector []float32, limit int, minScore float64) ([]domain.Webtoon, error)

	// ScanVectors loads all webtoons with their stored embeddings for
	// in-process similarity scoring.
	ScanVectors(ctx context.Context) ([]domain.Webtoon, error)
}

// Ranker orders a candidate list before it is truncated to the page size.
type Ranker interface {
	Rerank(items []domain.Webtoon, intent domain.Intent, sortByLikes bool, dir domain.SortDirection) []domain.Webtoon
}
