package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// QueryLimits bounds the accepted query length in characters.
type QueryLimits struct {
	Min int
	Max int
}

// DefaultQueryLimits returns the standard query length bounds.
func DefaultQueryLimits() QueryLimits {
	return QueryLimits{Min: 5, Max: 500}
}

// Query is a validated, sanitized user request. Immutable once accepted.
type Query struct {
	text string
}

var (
	symbolsOnly  = regexp.MustCompile(`^[^a-zA-Z0-9\s]+$`)
	alphanumeric = regexp.MustCompile(`[a-zA-Z0-9]`)
	angleBracket = regexp.MustCompile(`[<>]`)
)

// NewQuery validates raw user input and returns a sanitized Query.
// Violations are reported as ErrInvalidQuery wrapping a specific cause.
func NewQuery(raw string, lim QueryLimits) (Query, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) < lim.Min {
		return Query{}, fmt.Errorf("%w: %w (minimum %d characters)", ErrInvalidQuery, ErrQueryTooShort, lim.Min)
	}
	if len(raw) > lim.Max {
		return Query{}, fmt.Errorf("%w: %w (maximum %d characters)", ErrInvalidQuery, ErrQueryTooLong, lim.Max)
	}
	if symbolsOnly.MatchString(trimmed) || !alphanumeric.MatchString(trimmed) {
		return Query{}, fmt.Errorf("%w: %w", ErrInvalidQuery, ErrQueryNoContent)
	}
	if repeatedRun(trimmed, 10) {
		return Query{}, fmt.Errorf("%w: %w", ErrInvalidQuery, ErrQueryNoContent)
	}
	return Query{text: sanitize(trimmed)}, nil
}

// Text returns the sanitized query text.
func (q Query) Text() string { return q.text }

// sanitize collapses whitespace runs and strips angle brackets.
func sanitize(s string) string {
	s = angleBracket.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// repeatedRun reports whether s is a single character repeated more than n times.
func repeatedRun(s string, n int) bool {
	runes := []rune(s)
	if len(runes) <= n {
		return false
	}
	for _, r := range runes[1:] {
		if r != runes[0] {
			return false
		}
	}
	return true
}
