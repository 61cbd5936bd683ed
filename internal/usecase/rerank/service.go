// Package rerank implements the score-blending re-ranker. Boosts are
// deliberately capped well below typical similarity gaps: they break
// near-ties, never override relevance.
package rerank

import (
	"math"
	"sort"

	"github.com/toonrec/toonrec/internal/domain"
)

// engagementBoostCap bounds the log-scaled engagement contribution so a
// single runaway likes count cannot dominate ranking.
const engagementBoostCap = 0.02

// tierBoost is the popularity-tier contribution to the blended score.
var tierBoost = map[domain.Tier]float64{
	domain.TierHit:         0.03,
	domain.TierVeryPopular: 0.02,
	domain.TierPopular:     0.01,
	domain.TierLessPopular: 0,
	domain.TierUnpopular:   0,
}

// Service re-orders candidate lists after retrieval.
type Service struct{}

// New creates a re-ranking service.
func New() *Service {
	return &Service{}
}

// Rerank orders candidates for the final response. Engagement-sorted
// queries bypass similarity blending entirely; blending applies only to
// content-intent candidates. All sorts are stable: ties keep their
// original retrieval order.
func (s *Service) Rerank(
	items []domain.Webtoon, intent domain.Intent,
	sortByLikes bool, dir domain.SortDirection,
) []domain.Webtoon {
	if len(items) == 0 {
		return items
	}

	if sortByLikes {
		sort.SliceStable(items, func(i, j int) bool {
			if dir == domain.SortAscending {
				return items[i].Likes < items[j].Likes
			}
			return items[i].Likes > items[j].Likes
		})
		return items
	}

	if intent != domain.IntentContent {
		return items
	}

	for i := range items {
		items[i].Boosted = BlendedScore(items[i])
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Boosted > items[j].Boosted
	})
	return items
}

// BlendedScore is base similarity plus the bounded tier and engagement
// boosts. The total boost never exceeds 0.05.
func BlendedScore(w domain.Webtoon) float64 {
	return w.Similarity + tierBoost[w.Popularity] + engagementBoost(w.Likes)
}

// engagementBoost is log-scaled so the difference between 10k and 10M
// likes stays marginal.
func engagementBoost(likes int64) float64 {
	if likes <= 0 {
		return 0
	}
	return math.Min(engagementBoostCap, math.Log10(float64(likes)+1)/100)
}
