package domain

// Webtoon is a single catalog record as returned by the store.
// Similarity and Boosted are per-query views: Similarity is populated by the
// retrieval router (real for semantic hits, synthetic for attribute matches),
// Boosted by the re-ranker. Neither is ever persisted.
type Webtoon struct {
	Title        string
	Author       string
	Genre        string
	Popularity   Tier
	Quality      string
	Likes        int64
	Views        int64
	Summary      string
	CoverURL     string
	ReleasedDate string

	Similarity float64
	Boosted    float64

	// Vector is only populated by the full-scan fallback path.
	Vector []float32
}

// DedupeByTitle removes later occurrences of already-seen titles,
// preserving order. Title is the identity key within a result set.
func DedupeByTitle(items []Webtoon) []Webtoon {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, w := range items {
		if _, ok := seen[w.Title]; ok {
			continue
		}
		seen[w.Title] = struct{}{}
		out = append(out, w)
	}
	return out
}
