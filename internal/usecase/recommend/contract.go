package recommend

import (
	"context"

	"github.com/toonrec/toonrec/internal/domain"
	"github.com/toonrec/toonrec/internal/usecase/classify"
	"github.com/toonrec/toonrec/internal/usecase/extract"
	"github.com/toonrec/toonrec/internal/usecase/reject"
	"github.com/toonrec/toonrec/internal/usecase/retrieve"
)

// Classifier is the rule-based query analyzer.
type Classifier interface {
	Classify(text string) classify.Result
}

// Extractor is the language-model query analyzer.
type Extractor interface {
	Extract(ctx context.Context, query string) extract.Metadata
}

// Retriever resolves an analyzed query against the catalog. Retrieval
// degrades internally; an exhausted cascade is an empty result, not an
// error.
type Retriever interface {
	Retrieve(ctx context.Context, p retrieve.Params) retrieve.Result
}

// StatsProvider supplies catalog coverage for rejection payloads.
type StatsProvider interface {
	Get(ctx context.Context, forceRefresh bool) (domain.Stats, error)
}

// Rejecter builds the no-match response.
type Rejecter interface {
	Build(query string, intent domain.Intent, filters domain.Filters, available domain.Stats) reject.Payload
	Explain(ctx context.Context, p reject.Payload) string
}
