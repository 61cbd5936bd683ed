package extract

import (
	"reflect"
	"testing"

	"github.com/toonrec/toonrec/internal/domain"
)

func TestMapQuality_QualityOnly(t *testing.T) {
	policy := DefaultMappingPolicy()

	tests := []struct {
		quality   domain.QualityIntent
		wantTiers []domain.Tier
	}{
		{domain.QualityExcellent, []domain.Tier{domain.TierHit}},
		{domain.QualityGood, []domain.Tier{domain.TierPopular, domain.TierVeryPopular}},
		{domain.QualityUnpopularButGood, []domain.Tier{domain.TierPopular, domain.TierLessPopular}},
		{domain.QualityPoor, []domain.Tier{domain.TierUnpopular}},
	}

	for _, tt := range tests {
		t.Run(string(tt.quality), func(t *testing.T) {
			tiers, sortByLikes, dir := policy.MapQuality(tt.quality, nil)
			if !reflect.DeepEqual(tiers, tt.wantTiers) {
				t.Errorf("tiers = %v, want %v", tiers, tt.wantTiers)
			}
			if !sortByLikes {
				t.Error("quality intent must enable engagement sorting")
			}
			if dir != domain.SortDescending {
				t.Errorf("direction = %s, want desc", dir)
			}
		})
	}
}

func TestMapQuality_NoQualityPassesThrough(t *testing.T) {
	explicit := []domain.Tier{domain.TierHit}
	tiers, sortByLikes, _ := DefaultMappingPolicy().MapQuality("", explicit)
	if !reflect.DeepEqual(tiers, explicit) {
		t.Errorf("tiers = %v, want %v unchanged", tiers, explicit)
	}
	if sortByLikes {
		t.Error("no quality intent must not enable engagement sorting")
	}
}

// An explicit popularity list is never silently dropped when a quality
// intent is also present.
func TestMapQuality_Combined(t *testing.T) {
	policy := DefaultMappingPolicy()

	t.Run("poor within low tiers keeps popularity, ascending", func(t *testing.T) {
		existing := []domain.Tier{domain.TierUnpopular}
		tiers, sortByLikes, dir := policy.MapQuality(domain.QualityPoor, existing)
		if !reflect.DeepEqual(tiers, existing) {
			t.Errorf("tiers = %v, want %v", tiers, existing)
		}
		if !sortByLikes {
			t.Error("sortByLikes must be true")
		}
		if dir != domain.SortAscending {
			t.Errorf("direction = %s, want asc", dir)
		}
	})

	t.Run("poor within low tiers honors configured direction", func(t *testing.T) {
		p := MappingPolicy{PoorLowTierDirection: domain.SortDescending}
		_, _, dir := p.MapQuality(domain.QualityPoor, []domain.Tier{domain.TierLessPopular})
		if dir != domain.SortDescending {
			t.Errorf("direction = %s, want configured desc", dir)
		}
	})

	t.Run("popular plus good keeps popularity, descending", func(t *testing.T) {
		existing := []domain.Tier{domain.TierVeryPopular, domain.TierHit}
		tiers, sortByLikes, dir := policy.MapQuality(domain.QualityGood, existing)
		if !reflect.DeepEqual(tiers, existing) {
			t.Errorf("tiers = %v, want %v", tiers, existing)
		}
		if !sortByLikes || dir != domain.SortDescending {
			t.Errorf("got sortByLikes=%v dir=%s, want true/desc", sortByLikes, dir)
		}
	})

	t.Run("poor with high-tier popularity keeps popularity, descending", func(t *testing.T) {
		existing := []domain.Tier{domain.TierVeryPopular}
		tiers, sortByLikes, dir := policy.MapQuality(domain.QualityPoor, existing)
		if !reflect.DeepEqual(tiers, existing) {
			t.Errorf("tiers = %v, want %v", tiers, existing)
		}
		if !sortByLikes || dir != domain.SortDescending {
			t.Errorf("got sortByLikes=%v dir=%s, want true/desc", sortByLikes, dir)
		}
	})
}
