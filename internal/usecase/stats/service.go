// Package stats exposes catalog coverage figures used by rejection
// messages and the stats endpoint. The figures come from a full catalog
// projection, so they are computed lazily and cached until invalidated.
package stats

import (
	"context"
	"sync"

	"github.com/toonrec/toonrec/internal/domain"
)

// Reader loads coverage figures from the catalog store.
type Reader interface {
	Stats(ctx context.Context) (domain.Stats, error)
}

// Service caches catalog statistics across requests.
type Service struct {
	reader Reader

	mu     sync.RWMutex
	cached *domain.Stats
}

// New creates a stats service over the given reader.
func New(reader Reader) *Service {
	return &Service{reader: reader}
}

// Get returns catalog statistics, computing them on first use. With
// forceRefresh the cache is bypassed and replaced. A refresh failure
// leaves any previously cached value intact.
func (s *Service) Get(ctx context.Context, forceRefresh bool) (domain.Stats, error) {
	if !forceRefresh {
		s.mu.RLock()
		cached := s.cached
		s.mu.RUnlock()
		if cached != nil {
			return *cached, nil
		}
	}

	fresh, err := s.reader.Stats(ctx)
	if err != nil {
		return domain.Stats{}, err
	}

	s.mu.Lock()
	s.cached = &fresh
	s.mu.Unlock()
	return fresh, nil
}

// Invalidate drops the cached value so the next Get recomputes it.
// Called after catalog writes.
func (s *Service) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.mu.Unlock()
}

// HasGenre reports whether the catalog contains the genre. Used to tell
// "no such genre" apart from "genre exists but filters excluded it".
func (s *Service) HasGenre(ctx context.Context, genre string) (bool, error) {
	if genre == "" {
		return false, nil
	}
	st, err := s.Get(ctx, false)
	if err != nil {
		return false, err
	}
	for _, g := range st.AvailableGenres {
		if g == genre {
			return true, nil
		}
	}
	return false, nil
}
