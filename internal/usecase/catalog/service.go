// Package catalog handles ingestion of webtoon records into the store.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/toonrec/toonrec/internal/domain"
	"github.com/toonrec/toonrec/internal/logger"
)

// Writer persists catalog records.
type Writer interface {
	Upsert(ctx context.Context, items []domain.Webtoon) error
}

// Invalidator drops cached catalog projections after writes.
type Invalidator interface {
	Invalidate()
}

// Service embeds and stores webtoon records.
type Service struct {
	writer   Writer
	embedder domain.Embedder
	cache    Invalidator
}

// New creates the ingestion service. cache may be nil.
func New(writer Writer, embedder domain.Embedder, cache Invalidator) *Service {
	return &Service{writer: writer, embedder: embedder, cache: cache}
}

// Load validates, embeds and upserts records, returning how many were
// stored. Records that already carry a vector are not re-embedded.
func (s *Service) Load(ctx context.Context, items []domain.Webtoon) (int, error) {
	log := logger.FromContext(ctx)

	valid := make([]domain.Webtoon, 0, len(items))
	for _, w := range items {
		if strings.TrimSpace(w.Title) == "" {
			log.Warn("skipping record without title")
			continue
		}
		if len(w.Vector) == 0 {
			emb, err := s.embedder.Embed(ctx, embeddingText(w))
			if err != nil {
				return 0, fmt.Errorf("embed %q: %w", w.Title, err)
			}
			w.Vector = emb.Embedding
		}
		valid = append(valid, w)
	}
	if len(valid) == 0 {
		return 0, nil
	}

	if err := s.writer.Upsert(ctx, valid); err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.Invalidate()
	}

	log.Info("catalog records loaded", zap.Int("count", len(valid)))
	return len(valid), nil
}

// embeddingText is the document representation fed to the embedding
// model: title, genre and summary, which is what queries describe.
func embeddingText(w domain.Webtoon) string {
	parts := []string{w.Title}
	if w.Genre != "" {
		parts = append(parts, w.Genre)
	}
	if w.Summary != "" {
		parts = append(parts, w.Summary)
	}
	return strings.Join(parts, ". ")
}
