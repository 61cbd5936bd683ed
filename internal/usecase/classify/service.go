// Package classify implements the rule-based query classifier: keyword-table
// intent detection, negation-aware filter extraction, and semantic residual
// construction. A pure function of the query text, no external calls.
package classify

import (
	"regexp"
	"sort"
	"strings"

	"github.com/toonrec/toonrec/internal/domain"
)

// Confidence levels per intent decision.
const (
	confAttribute    = 0.90
	confHybrid       = 0.85
	confContent      = 0.80
	confNoIndicators = 0.50
)

// Result is the classifier output: the classification plus the quality
// signal, which is not a filter and still needs the mapping policy applied.
type Result struct {
	domain.Classification
	Quality domain.QualityIntent
}

// negationTriggers match negating text immediately preceding a keyword
// phrase ("never popular", "avoid famous"). The "un-" prefix needs no
// pattern since the negated forms are table entries themselves.
var negationTriggers = []*regexp.Regexp{
	regexp.MustCompile(`\bnot\s+(?:so\s+)?$`),
	regexp.MustCompile(`\bnever\s+$`),
	regexp.MustCompile(`\bavoiding?\s+$`),
	regexp.MustCompile(`\bwithout\s+$`),
	regexp.MustCompile(`\bisn'?t\s+$`),
}

// Service is the rule-based classifier. Safe for concurrent use.
type Service struct {
	popularity []tierEntry
	quality    []qualityEntry
	genres     []genreEntry
	content    []string
	strip      []*regexp.Regexp
}

// New builds a classifier with the fixed keyword tables. Popularity and
// quality tables are sorted by descending phrase length so that a specific
// phrase like "not popular" always wins over its substring "popular".
func New() *Service {
	pop := make([]tierEntry, len(popularityKeywords))
	copy(pop, popularityKeywords)
	sort.SliceStable(pop, func(i, j int) bool {
		return len(pop[i].phrase) > len(pop[j].phrase)
	})

	qual := make([]qualityEntry, len(qualityKeywords))
	copy(qual, qualityKeywords)
	sort.SliceStable(qual, func(i, j int) bool {
		return len(qual[i].phrase) > len(qual[j].phrase)
	})

	s := &Service{
		popularity: pop,
		quality:    qual,
		genres:     genreKeywords,
		content:    contentKeywords,
	}

	// Precompile whole-word strip patterns for the semantic residual.
	for _, e := range popularityKeywords {
		s.strip = append(s.strip, wordPattern(e.phrase))
	}
	for _, e := range qualityKeywords {
		s.strip = append(s.strip, wordPattern(e.phrase))
	}
	for _, e := range genreKeywords {
		s.strip = append(s.strip, wordPattern(e.phrase))
	}
	for _, w := range fillerWords {
		s.strip = append(s.strip, wordPattern(w))
	}
	return s
}

func wordPattern(phrase string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(phrase) + `\b`)
}

// Classify extracts filters and decides the query intent.
func (s *Service) Classify(text string) Result {
	query := strings.ToLower(strings.TrimSpace(text))

	filters := domain.Filters{
		Genre:      s.extractGenre(query),
		Popularity: s.extractPopularity(query),
	}
	quality := s.extractQuality(query)

	hasFilters := !filters.IsEmpty() || quality != ""
	hasContent := s.hasContentKeywords(query)

	residual := s.buildResidual(query)

	var intent domain.Intent
	var confidence float64
	switch {
	case hasFilters && !hasContent:
		intent, confidence = domain.IntentAttribute, confAttribute
	case hasFilters && hasContent:
		intent, confidence = domain.IntentHybrid, confHybrid
	case hasContent:
		intent, confidence = domain.IntentContent, confContent
	default:
		// No signal at all: semantic search over the full raw query.
		intent, confidence = domain.IntentContent, confNoIndicators
		residual = text
	}

	return Result{
		Classification: domain.Classification{
			Intent:        intent,
			Filters:       filters,
			SemanticQuery: residual,
			Confidence:    confidence,
		},
		Quality: quality,
	}
}

// extractPopularity returns the tier set of the first (longest) matching
// phrase. A high-tier match preceded by a negation trigger flips to the
// low-tier set.
func (s *Service) extractPopularity(query string) []domain.Tier {
	for _, e := range s.popularity {
		idx := strings.Index(query, e.phrase)
		if idx < 0 {
			continue
		}
		if !lowTiersOnly(e.tiers) && negatedBefore(query[:idx]) {
			return []domain.Tier{domain.TierUnpopular, domain.TierLessPopular}
		}
		return e.tiers
	}
	return nil
}

// extractQuality returns the quality intent of the first (longest) matching
// phrase. A positive match preceded by a negation trigger flips to poor.
func (s *Service) extractQuality(query string) domain.QualityIntent {
	for _, e := range s.quality {
		idx := strings.Index(query, e.phrase)
		if idx < 0 {
			continue
		}
		if e.quality != domain.QualityPoor && negatedBefore(query[:idx]) {
			return domain.QualityPoor
		}
		return e.quality
	}
	return ""
}

func (s *Service) extractGenre(query string) string {
	for _, e := range s.genres {
		if strings.Contains(query, e.phrase) {
			return e.genre
		}
	}
	return ""
}

// hasContentKeywords reports whether the query mentions any content
// indicator. Single-word indicators match on token membership, multi-word
// ones on containment.
func (s *Service) hasContentKeywords(query string) bool {
	tokens := make(map[string]struct{})
	for _, t := range strings.Fields(query) {
		tokens[strings.Trim(t, ".,!?\"'")] = struct{}{}
	}
	for _, kw := range s.content {
		if strings.ContainsRune(kw, ' ') {
			if strings.Contains(query, kw) {
				return true
			}
			continue
		}
		if _, ok := tokens[kw]; ok {
			return true
		}
	}
	return false
}

// buildResidual strips the attribute vocabulary and filler words from the
// query. Whole-word replacement only; whitespace is collapsed afterwards.
// An empty residual falls back to the original query so that semantic
// search never receives an empty string.
func (s *Service) buildResidual(query string) string {
	residual := query
	for _, p := range s.strip {
		residual = p.ReplaceAllString(residual, "")
	}
	residual = strings.Join(strings.Fields(residual), " ")
	if residual == "" {
		return query
	}
	return residual
}

func negatedBefore(prefix string) bool {
	for _, p := range negationTriggers {
		if p.MatchString(prefix) {
			return true
		}
	}
	return false
}

func lowTiersOnly(tiers []domain.Tier) bool {
	for _, t := range tiers {
		if !t.IsLow() {
			return false
		}
	}
	return len(tiers) > 0
}
