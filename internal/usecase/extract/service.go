// Package extract implements LLM-backed metadata extraction and the
// quality-to-popularity mapping policy. Extraction failures are never
// surfaced: the service degrades to empty filters with low confidence.
package extract

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/toonrec/toonrec/internal/domain"
	"github.com/toonrec/toonrec/internal/logger"
)

// fallbackConfidence marks metadata substituted after an extraction failure.
const fallbackConfidence = 0.3

// Metadata is the structured understanding of a query: filters, the quality
// signal already resolved through the mapping policy, and the residual
// content themes for semantic search.
type Metadata struct {
	Genre           string
	Popularity      []domain.Tier
	Quality         domain.QualityIntent
	ContentKeywords string
	Intent          domain.Intent
	Confidence      float64
	SortByLikes     bool
	SortDirection   domain.SortDirection
}

// Filters assembles the store-facing filters. Quality is never a filter.
func (m Metadata) Filters() domain.Filters {
	return domain.Filters{Genre: m.Genre, Popularity: m.Popularity}
}

// Service extracts metadata from queries via a text generation collaborator.
type Service struct {
	gen    domain.Generator
	policy MappingPolicy
}

// New creates an extraction service.
func New(gen domain.Generator, policy MappingPolicy) *Service {
	return &Service{gen: gen, policy: policy}
}

// extractionDTO mirrors the JSON contract in the prompt.
type extractionDTO struct {
	Genre           *string  `json:"genre"`
	Popularity      []string `json:"popularity"`
	QualityIntent   *string  `json:"quality_intent"`
	ContentKeywords *string  `json:"content_keywords"`
	QueryType       string   `json:"query_type"`
	Confidence      float64  `json:"confidence"`
}

// Extract parses the query through the LLM. Generator failures and
// unparseable responses both degrade to empty low-confidence metadata;
// the returned error is always nil by contract.
func (s *Service) Extract(ctx context.Context, query string) Metadata {
	log := logger.FromContext(ctx)

	raw, err := s.gen.Generate(ctx, extractionPrompt(query))
	if err != nil {
		log.Warn("metadata extraction failed, using empty filters", zap.Error(err))
		return fallbackMetadata()
	}

	var dto extractionDTO
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &dto); err != nil {
		log.Warn("metadata extraction returned unparseable JSON",
			zap.Error(err), zap.String("response", truncate(raw, 200)))
		return fallbackMetadata()
	}

	md := Metadata{
		Intent:     domain.IntentContent,
		Confidence: dto.Confidence,
	}
	if md.Confidence <= 0 {
		md.Confidence = 0.8
	}
	if intent := domain.Intent(dto.QueryType); intent.Valid() {
		md.Intent = intent
	}
	if dto.Genre != nil {
		md.Genre = *dto.Genre
	}
	if dto.ContentKeywords != nil {
		md.ContentKeywords = strings.TrimSpace(*dto.ContentKeywords)
	}

	var popularity []domain.Tier
	for _, p := range dto.Popularity {
		if t, ok := domain.ParseTier(p); ok {
			popularity = append(popularity, t)
		}
	}
	if dto.QualityIntent != nil {
		if q := domain.QualityIntent(*dto.QualityIntent); q.Valid() {
			md.Quality = q
		}
	}

	md.Popularity, md.SortByLikes, md.SortDirection = s.policy.MapQuality(md.Quality, popularity)

	log.Debug("metadata extracted",
		zap.String("genre", md.Genre),
		zap.Any("popularity", md.Popularity),
		zap.String("quality", string(md.Quality)),
		zap.String("intent", string(md.Intent)),
		zap.Bool("sort_by_likes", md.SortByLikes),
	)
	return md
}

func fallbackMetadata() Metadata {
	return Metadata{
		Intent:        domain.IntentContent,
		Confidence:    fallbackConfidence,
		SortDirection: domain.SortDescending,
	}
}

var codeFence = regexp.MustCompile("```(?:json)?")

// stripCodeFence removes markdown code fences models wrap JSON in.
func stripCodeFence(s string) string {
	return strings.TrimSpace(codeFence.ReplaceAllString(s, ""))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
