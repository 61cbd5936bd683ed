package classify

import "github.com/toonrec/toonrec/internal/domain"

// tierEntry maps a query phrase to the popularity tiers it denotes.
type tierEntry struct {
	phrase string
	tiers  []domain.Tier
}

// qualityEntry maps a query phrase to a coarse quality intent.
type qualityEntry struct {
	phrase  string
	quality domain.QualityIntent
}

// genreEntry maps a query phrase to a catalog genre.
type genreEntry struct {
	phrase string
	genre  string
}

// popularityKeywords covers both positive and negated popularity phrases.
// Matching is longest-phrase-first, so "not popular" wins over "popular".
var popularityKeywords = []tierEntry{
	{"popular", []domain.Tier{domain.TierPopular, domain.TierVeryPopular}},
	{"very popular", []domain.Tier{domain.TierVeryPopular}},
	{"trending", []domain.Tier{domain.TierVeryPopular}},
	{"famous", []domain.Tier{domain.TierPopular, domain.TierVeryPopular}},
	{"well-known", []domain.Tier{domain.TierPopular, domain.TierVeryPopular}},
	{"mainstream", []domain.Tier{domain.TierPopular, domain.TierVeryPopular}},
	{"masterpiece", []domain.Tier{domain.TierHit}},
	{"hit", []domain.Tier{domain.TierHit}},
	{"mega hit", []domain.Tier{domain.TierHit}},
	{"legendary", []domain.Tier{domain.TierHit}},
	{"unpopular", []domain.Tier{domain.TierUnpopular, domain.TierLessPopular}},
	{"not popular", []domain.Tier{domain.TierUnpopular, domain.TierLessPopular}},
	{"not so popular", []domain.Tier{domain.TierUnpopular, domain.TierLessPopular}},
	{"less popular", []domain.Tier{domain.TierLessPopular}},
	{"unknown", []domain.Tier{domain.TierUnpopular, domain.TierLessPopular}},
	{"hidden gem", []domain.Tier{domain.TierUnpopular, domain.TierLessPopular}},
	{"underrated", []domain.Tier{domain.TierUnpopular, domain.TierLessPopular}},
	{"niche", []domain.Tier{domain.TierUnpopular, domain.TierLessPopular}},
}

var qualityKeywords = []qualityEntry{
	{"excellent", domain.QualityExcellent},
	{"best", domain.QualityExcellent},
	{"top", domain.QualityExcellent},
	{"highest quality", domain.QualityExcellent},
	{"highly rated", domain.QualityExcellent},
	{"great", domain.QualityGood},
	{"good", domain.QualityGood},
	{"quality", domain.QualityGood},
	{"decent", domain.QualityGood},
	{"poor", domain.QualityPoor},
	{"bad", domain.QualityPoor},
	{"low quality", domain.QualityPoor},
}

// genreKeywords is scanned in order; genre names are mutually near-exclusive
// so no length sorting is needed.
var genreKeywords = []genreEntry{
	{"action", "Action"},
	{"romance", "Romance"},
	{"fantasy", "Fantasy"},
	{"drama", "Drama"},
	{"thriller", "Thriller"},
	{"horror", "Horror"},
	{"comedy", "Comedy"},
	{"supernatural", "Supernatural"},
	{"sci-fi", "Sci-Fi"},
	{"school", "School"},
	{"slice of life", "Slice of Life"},
}

// contentKeywords indicate plot/character/theme interest and trigger
// semantic search.
var contentKeywords = []string{
	"mc", "protagonist", "character", "plot", "story",
	"about", "where", "revenge", "power", "crazy",
	"overpowered", "weak", "strong", "smart", "funny",
	"sad", "dark", "wholesome", "toxic", "betrayal",
	"friendship", "family", "underdog", "villain",
	"hero", "martial arts", "regression", "reincarnation",
	"system", "game", "level up", "dungeon", "tower",
}

// fillerWords are stripped from the semantic residual alongside the
// attribute vocabulary.
var fillerWords = []string{
	"webtoons", "webtoon", "manhwas", "manhwa", "manga", "give me", "show me",
	"i want", "looking for", "recommend", "find", "a", "an", "the",
}
