package extract

import "github.com/toonrec/toonrec/internal/domain"

// MappingPolicy governs how a quality intent translates into popularity
// tiers and an engagement sort. The catalog has no authoritative quality
// column, so engagement count serves as the quality proxy: a popularity
// bucket plus an engagement sort approximates a 2-D quality signal.
type MappingPolicy struct {
	// PoorLowTierDirection is the engagement sort direction when the user
	// asks for poor quality within an already-low popularity tier. The
	// intended direction is ambiguous in principle ("worst of the worst"
	// vs "best of the worst"), so it is policy, not a constant.
	PoorLowTierDirection domain.SortDirection
}

// DefaultMappingPolicy surfaces the lowest-engagement items first for the
// poor + low-tier combination.
func DefaultMappingPolicy() MappingPolicy {
	return MappingPolicy{PoorLowTierDirection: domain.SortAscending}
}

// MapQuality resolves a quality intent against an already-extracted
// popularity list. An explicit popularity is never silently dropped.
func (p MappingPolicy) MapQuality(
	quality domain.QualityIntent, popularity []domain.Tier,
) (tiers []domain.Tier, sortByLikes bool, dir domain.SortDirection) {
	if quality == "" {
		return popularity, false, domain.SortDescending
	}

	if len(popularity) > 0 {
		if quality == domain.QualityPoor && anyLowTier(popularity) {
			return popularity, true, p.PoorLowTierDirection
		}
		return popularity, true, domain.SortDescending
	}

	switch quality {
	case domain.QualityExcellent:
		tiers = []domain.Tier{domain.TierHit}
	case domain.QualityGood:
		tiers = []domain.Tier{domain.TierPopular, domain.TierVeryPopular}
	case domain.QualityUnpopularButGood:
		tiers = []domain.Tier{domain.TierPopular, domain.TierLessPopular}
	case domain.QualityPoor:
		tiers = []domain.Tier{domain.TierUnpopular}
	default:
		return popularity, false, domain.SortDescending
	}
	return tiers, true, domain.SortDescending
}

func anyLowTier(tiers []domain.Tier) bool {
	for _, t := range tiers {
		if t.IsLow() {
			return true
		}
	}
	return false
}
