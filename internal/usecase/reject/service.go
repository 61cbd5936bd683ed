// Package reject builds the response for queries that matched nothing.
// An empty result is still a successful answer: the payload explains
// which constraints could not be satisfied and what the catalog does
// cover, so the caller can steer the user instead of showing a blank page.
package reject

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/toonrec/toonrec/internal/domain"
	"github.com/toonrec/toonrec/internal/logger"
)

// Payload is the structured no-match context returned alongside an empty
// recommendation list.
type Payload struct {
	Query     string         `json:"query"`
	Intent    domain.Intent  `json:"intent"`
	Filters   domain.Filters `json:"filters"`
	Available domain.Stats   `json:"available"`
}

// Service turns empty retrievals into user-facing guidance.
type Service struct {
	gen domain.Generator
}

// New creates a rejection builder. gen may be nil, in which case every
// explanation uses the deterministic template.
func New(gen domain.Generator) *Service {
	return &Service{gen: gen}
}

// Build assembles the structured payload for an empty result.
func (s *Service) Build(query string, intent domain.Intent, filters domain.Filters, available domain.Stats) Payload {
	return Payload{
		Query:     query,
		Intent:    intent,
		Filters:   filters,
		Available: available,
	}
}

// Explain produces a short apology with alternatives. Generation failures
// degrade to the template; the returned text never admits that a language
// model was involved or that it failed.
func (s *Service) Explain(ctx context.Context, p Payload) string {
	if s.gen == nil {
		return s.fallback(p)
	}
	text, err := s.gen.Generate(ctx, explanationPrompt(p))
	if err != nil {
		logger.FromContext(ctx).Warn("rejection explanation generation failed, using template",
			zap.Error(err))
		return s.fallback(p)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return s.fallback(p)
	}
	return text
}

// fallback is the deterministic explanation. It names the constraints the
// catalog could not satisfy and offers what is available instead.
func (s *Service) fallback(p Payload) string {
	var b strings.Builder
	b.WriteString("Sorry, I couldn't find any webtoons")
	if parts := describeFilters(p.Filters); parts != "" {
		b.WriteString(" matching ")
		b.WriteString(parts)
	} else {
		b.WriteString(" matching your request")
	}
	b.WriteString(".")

	if len(p.Available.AvailableGenres) > 0 {
		b.WriteString(" Genres I can search right now: ")
		b.WriteString(strings.Join(p.Available.AvailableGenres, ", "))
		b.WriteString(".")
	}
	if len(p.Available.AvailablePopularity) > 0 {
		b.WriteString(" You can also filter by popularity: ")
		b.WriteString(strings.Join(p.Available.AvailablePopularity, ", "))
		b.WriteString(".")
	}
	b.WriteString(" Try loosening a filter or describing the story you're after.")
	return b.String()
}

func describeFilters(f domain.Filters) string {
	var parts []string
	if f.Genre != "" {
		parts = append(parts, fmt.Sprintf("the %s genre", f.Genre))
	}
	if len(f.Popularity) > 0 {
		tiers := make([]string, len(f.Popularity))
		for i, t := range f.Popularity {
			tiers[i] = string(t)
		}
		parts = append(parts, fmt.Sprintf("popularity %s", strings.Join(tiers, " or ")))
	}
	return strings.Join(parts, " and ")
}

func explanationPrompt(p Payload) string {
	var b strings.Builder
	b.WriteString("You are a friendly webtoon recommendation assistant. ")
	b.WriteString("A search returned no results. Write a short, warm reply (2-3 sentences) that ")
	b.WriteString("apologizes, explains which requested filters had no matches, and suggests ")
	b.WriteString("concrete alternatives from what the catalog offers. ")
	b.WriteString("Reply in the language of the user's query. Do not mention internal systems.\n\n")
	fmt.Fprintf(&b, "User query: %q\n", p.Query)
	if desc := describeFilters(p.Filters); desc != "" {
		fmt.Fprintf(&b, "Requested filters: %s\n", desc)
	}
	if len(p.Available.AvailableGenres) > 0 {
		fmt.Fprintf(&b, "Available genres: %s\n", strings.Join(p.Available.AvailableGenres, ", "))
	}
	if len(p.Available.AvailablePopularity) > 0 {
		fmt.Fprintf(&b, "Available popularity tiers: %s\n", strings.Join(p.Available.AvailablePopularity, ", "))
	}
	return b.String()
}
