package domain

// Intent is the coarse query intent driving retrieval strategy selection.
type Intent string

const (
	// IntentAttribute means filters only, no free-text relevance.
	IntentAttribute Intent = "attribute"
	// IntentContent means free-text relevance only.
	IntentContent Intent = "content"
	// IntentHybrid means both filters and free-text relevance.
	IntentHybrid Intent = "hybrid"
)

// Valid reports whether i is a known intent.
func (i Intent) Valid() bool {
	return i == IntentAttribute || i == IntentContent || i == IntentHybrid
}

// NeedsEmbedding reports whether this intent requires a query vector.
func (i Intent) NeedsEmbedding() bool {
	return i == IntentContent || i == IntentHybrid
}

// Classification is the output of query understanding: an intent, the
// structured filters, the residual text for semantic search, and a
// confidence score in [0,1].
type Classification struct {
	Intent        Intent
	Filters       Filters
	SemanticQuery string
	Confidence    float64
}
