package domain

// Filters are the structured attribute constraints extracted from a query.
// Genre is a single exact value; Popularity is a set of acceptable tiers.
type Filters struct {
	Genre      string `json:"genre,omitempty"`
	Popularity []Tier `json:"popularity,omitempty"`
}

// IsEmpty reports whether no filter field is populated.
func (f Filters) IsEmpty() bool {
	return f.Genre == "" && len(f.Popularity) == 0
}

// Matches reports whether w satisfies every populated filter field.
func (f Filters) Matches(w Webtoon) bool {
	if f.Genre != "" && w.Genre != f.Genre {
		return false
	}
	if len(f.Popularity) > 0 {
		found := false
		for _, t := range f.Popularity {
			if w.Popularity == t {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// QualityIntent is the user's quality preference. It is never used as a
// store filter directly; the extraction policy translates it into a
// popularity tier set plus an engagement-sort flag.
type QualityIntent string

const (
	QualityExcellent        QualityIntent = "excellent"
	QualityGood             QualityIntent = "good"
	QualityUnpopularButGood QualityIntent = "unpopular_but_good"
	QualityPoor             QualityIntent = "poor"
)

// Valid reports whether q is a known quality intent.
func (q QualityIntent) Valid() bool {
	switch q {
	case QualityExcellent, QualityGood, QualityUnpopularButGood, QualityPoor:
		return true
	}
	return false
}
