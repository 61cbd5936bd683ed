package domain

// Tier is one of the five fixed popularity buckets.
type Tier string

// Popularity tiers, highest first. Hit is roughly the top 3% of the catalog.
const (
	TierHit         Tier = "Hit"
	TierVeryPopular Tier = "VeryPopular"
	TierPopular     Tier = "Popular"
	TierLessPopular Tier = "LessPopular"
	TierUnpopular   Tier = "Unpopular"
)

// AllTiers lists every tier in descending popularity order.
var AllTiers = []Tier{TierHit, TierVeryPopular, TierPopular, TierLessPopular, TierUnpopular}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierHit, TierVeryPopular, TierPopular, TierLessPopular, TierUnpopular:
		return true
	}
	return false
}

// IsLow reports whether t is one of the low-engagement tiers.
// Used by the quality mapping policy to decide sort direction.
func (t Tier) IsLow() bool {
	return t == TierLessPopular || t == TierUnpopular
}

// ParseTier converts a raw string into a Tier, reporting validity.
func ParseTier(s string) (Tier, bool) {
	t := Tier(s)
	return t, t.Valid()
}
