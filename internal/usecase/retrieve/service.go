// Package retrieve routes classified queries to a retrieval strategy and
// degrades through a fallback cascade when the primary path fails.
package retrieve

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/toonrec/toonrec/internal/domain"
	"github.com/toonrec/toonrec/internal/logger"
	"github.com/toonrec/toonrec/internal/metrics"
)

const (
	// exactMatchScore is the synthetic similarity for attribute matches,
	// which satisfy the query's filters exactly.
	exactMatchScore = 0.95

	// backfillScore marks attribute-sourced candidates appended to a
	// hybrid result. Below exactMatchScore so genuine semantic matches
	// keep ranking above padding.
	backfillScore = 0.7

	// attributeHeadroom and semanticHeadroom oversize store queries so
	// dedupe and re-ranking have candidates to work with.
	attributeHeadroom = 2
	semanticHeadroom  = 3
)

// Outcome records how a retrieval resolved.
type Outcome string

const (
	// OutcomeOK means the primary strategy for the intent produced results.
	OutcomeOK Outcome = "ok"
	// OutcomeDegraded means a fallback produced the results.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeEmpty means every strategy in the cascade came back empty.
	OutcomeEmpty Outcome = "empty"
)

// Params carries everything a single retrieval needs.
type Params struct {
	Vector      []float32
	Filters     domain.Filters
	Intent      domain.Intent
	TopK        int
	SortByLikes bool
	Direction   domain.SortDirection
}

// Result is a ranked, truncated candidate page plus how it was produced.
type Result struct {
	Items    []domain.Webtoon
	Strategy string
	Outcome  Outcome
}

// Service is the retrieval router.
type Service struct {
	repo      Repository
	ranker    Ranker
	threshold float64
}

// New creates a retrieval router. threshold is the minimum cosine
// similarity for semantic candidates.
func New(repo Repository, ranker Ranker, threshold float64) *Service {
	return &Service{repo: repo, ranker: ranker, threshold: threshold}
}

// Retrieve resolves p through the strategy matching its intent. Store
// errors never propagate past the router: the semantic paths degrade
// through the cascade, and a failed attribute-only retrieval comes back
// as an empty result.
func (s *Service) Retrieve(ctx context.Context, p Params) Result {
	if p.TopK <= 0 {
		p.TopK = 1
	}

	var res Result
	switch p.Intent {
	case domain.IntentAttribute:
		res = s.attribute(ctx, p)
	case domain.IntentHybrid:
		res = s.hybrid(ctx, p)
	default:
		res = s.content(ctx, p)
	}

	res.Items = s.ranker.Rerank(res.Items, p.Intent, p.SortByLikes, p.Direction)
	if len(res.Items) > p.TopK {
		res.Items = res.Items[:p.TopK]
	}
	if len(res.Items) == 0 {
		res.Outcome = OutcomeEmpty
	}
	metrics.RetrievalStrategyTotal.WithLabelValues(res.Strategy, string(res.Outcome)).Inc()
	return res
}

func (s *Service) attribute(ctx context.Context, p Params) Result {
	items, err := s.repo.ByAttributes(ctx, p.Filters, attributeHeadroom*p.TopK)
	if err != nil {
		logger.FromContext(ctx).Error("attribute retrieval failed, returning empty result", zap.Error(err))
		return Result{Strategy: "attribute", Outcome: OutcomeEmpty}
	}
	for i := range items {
		items[i].Similarity = exactMatchScore
	}
	return Result{Items: items, Strategy: "attribute", Outcome: OutcomeOK}
}

// content falls through the cascade only on store failure. A semantic
// query that succeeds with zero matches is a final empty result, so a
// query matching nothing reaches the rejection path instead of being
// padded with unrelated top-liked titles.
func (s *Service) content(ctx context.Context, p Params) Result {
	log := logger.FromContext(ctx)

	items, err := s.repo.Semantic(ctx, p.Vector, semanticHeadroom*p.TopK, s.threshold)
	if err == nil {
		return Result{Items: items, Strategy: "semantic", Outcome: OutcomeOK}
	}
	log.Warn("semantic search failed, falling back to manual scoring", zap.Error(err))

	items, err = s.manual(ctx, p)
	if err == nil {
		return Result{Items: items, Strategy: "manual", Outcome: OutcomeDegraded}
	}
	log.Warn("manual similarity scan failed, falling back to attributes", zap.Error(err))

	items, err = s.repo.ByAttributes(ctx, p.Filters, attributeHeadroom*p.TopK)
	if err != nil {
		log.Error("attribute fallback failed, returning empty result", zap.Error(err))
		return Result{Strategy: "attribute", Outcome: OutcomeEmpty}
	}
	for i := range items {
		items[i].Similarity = exactMatchScore
	}
	return Result{Items: items, Strategy: "attribute", Outcome: OutcomeDegraded}
}

// manual scores every stored vector in process and keeps the top
// candidates by raw dot product, with no similarity cutoff. Slow, but
// it keeps content queries alive when the search index is unavailable.
func (s *Service) manual(ctx context.Context, p Params) ([]domain.Webtoon, error) {
	if len(p.Vector) == 0 {
		return nil, nil
	}
	all, err := s.repo.ScanVectors(ctx)
	if err != nil {
		return nil, err
	}

	scored := make([]domain.Webtoon, 0, len(all))
	for _, w := range all {
		if len(w.Vector) != len(p.Vector) {
			continue
		}
		w.Similarity = dotProduct(p.Vector, w.Vector)
		scored = append(scored, w)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})
	if limit := semanticHeadroom * p.TopK; len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// hybrid searches semantically without filters, then applies the filters
// in process so a candidate's metadata and its embedding both count.
func (s *Service) hybrid(ctx context.Context, p Params) Result {
	log := logger.FromContext(ctx)

	candidates, err := s.repo.Semantic(ctx, p.Vector, semanticHeadroom*p.TopK, s.threshold)
	if err != nil || len(candidates) == 0 {
		if err != nil {
			log.Warn("hybrid semantic pass failed, using attributes only", zap.Error(err))
		}
		res := s.attribute(ctx, p)
		res.Strategy = "hybrid"
		if len(res.Items) > 0 {
			res.Outcome = OutcomeDegraded
		}
		return res
	}

	matched := make([]domain.Webtoon, 0, p.TopK)
	for _, w := range candidates {
		if p.Filters.Matches(w) {
			matched = append(matched, w)
			if len(matched) >= p.TopK {
				break
			}
		}
	}

	if len(matched) < p.TopK {
		matched = s.backfill(ctx, p, matched)
	}
	return Result{Items: matched, Strategy: "hybrid", Outcome: OutcomeOK}
}

// backfill pads a short hybrid page with filter-exact candidates.
func (s *Service) backfill(ctx context.Context, p Params, matched []domain.Webtoon) []domain.Webtoon {
	extra, err := s.repo.ByAttributes(ctx, p.Filters, attributeHeadroom*p.TopK)
	if err != nil {
		logger.FromContext(ctx).Warn("hybrid backfill failed", zap.Error(err))
		return matched
	}
	for i := range extra {
		extra[i].Similarity = backfillScore
	}
	merged := domain.DedupeByTitle(append(matched, extra...))
	if len(merged) > p.TopK {
		merged = merged[:p.TopK]
	}
	return merged
}

func dotProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
