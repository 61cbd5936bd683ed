package domain

// Stats describes the attribute space actually present in the store.
// Used for rejection-message context and the stats endpoint, never for
// retrieval.
type Stats struct {
	AvailableGenres     []string `json:"available_genres"`
	AvailablePopularity []string `json:"available_popularity"`
	AvailableQuality    []string `json:"available_quality,omitempty"`
	TotalWebtoons       int      `json:"total_webtoons"`
}
