// Package recommend is the end-to-end pipeline: validate the query,
// analyze it, embed when needed, retrieve, and shape the response.
package recommend

import (
	"context"

	"go.uber.org/zap"

	"github.com/toonrec/toonrec/internal/domain"
	"github.com/toonrec/toonrec/internal/logger"
	"github.com/toonrec/toonrec/internal/usecase/extract"
	"github.com/toonrec/toonrec/internal/usecase/reject"
	"github.com/toonrec/toonrec/internal/usecase/retrieve"
)

// Options tune the pipeline per deployment.
type Options struct {
	// UseLLM selects language-model metadata extraction over the
	// rule-based classifier.
	UseLLM bool
	// TopK is the recommendation page size.
	TopK int
	// Limits bound accepted query lengths.
	Limits domain.QueryLimits
	// Mapping is the quality-to-popularity policy applied after
	// rule-based classification.
	Mapping extract.MappingPolicy
}

// Recommendation is one ranked catalog entry in a response.
type Recommendation struct {
	Title        string      `json:"title"`
	Author       string      `json:"author,omitempty"`
	Genre        string      `json:"genre"`
	Popularity   domain.Tier `json:"popularity"`
	Likes        int64       `json:"likes"`
	Summary      string      `json:"summary,omitempty"`
	CoverURL     string      `json:"cover_url,omitempty"`
	ReleasedDate string      `json:"released_date,omitempty"`
	Score        float64     `json:"score"`
	Reason       string      `json:"reason,omitempty"`
}

// Response is the full pipeline output. An empty Items with a non-nil
// Rejection is a successful answer, not an error.
type Response struct {
	Query      string           `json:"query"`
	Intent     domain.Intent    `json:"intent"`
	Confidence float64          `json:"confidence"`
	Filters    domain.Filters   `json:"filters"`
	Strategy   string           `json:"strategy"`
	Degraded   bool             `json:"degraded"`
	Items      []Recommendation `json:"items"`
	Rejection  *reject.Payload  `json:"rejection,omitempty"`
	Message    string           `json:"message,omitempty"`
}

// Service wires the pipeline stages together.
type Service struct {
	opts       Options
	classifier Classifier
	extractor  Extractor
	embedder   domain.Embedder
	retriever  Retriever
	stats      StatsProvider
	rejecter   Rejecter
	explainer  domain.Generator
}

// New assembles the pipeline. extractor and explainer may be nil when no
// language model is configured; the pipeline then runs rule-based only.
func New(
	opts Options,
	classifier Classifier,
	extractor Extractor,
	embedder domain.Embedder,
	retriever Retriever,
	stats StatsProvider,
	rejecter Rejecter,
	explainer domain.Generator,
) *Service {
	if opts.Mapping.PoorLowTierDirection == "" {
		opts.Mapping = extract.DefaultMappingPolicy()
	}
	if opts.Limits == (domain.QueryLimits{}) {
		opts.Limits = domain.DefaultQueryLimits()
	}
	return &Service{
		opts:       opts,
		classifier: classifier,
		extractor:  extractor,
		embedder:   embedder,
		retriever:  retriever,
		stats:      stats,
		rejecter:   rejecter,
		explainer:  explainer,
	}
}

// Recommend runs the full pipeline for a raw user query.
//
// Validation and embedding failures return errors that wrap the domain
// sentinels; retrieval degradation and empty results do not.
func (s *Service) Recommend(ctx context.Context, rawQuery string) (Response, error) {
	log := logger.FromContext(ctx)

	q, err := domain.NewQuery(rawQuery, s.opts.Limits)
	if err != nil {
		return Response{}, err
	}

	meta := s.analyze(ctx, q.Text())
	log.Info("query analyzed",
		zap.String("intent", string(meta.Intent)),
		zap.Float64("confidence", meta.Confidence),
		zap.String("genre", meta.Genre),
		zap.Bool("sort_by_likes", meta.SortByLikes),
	)

	params := retrieve.Params{
		Filters:     meta.Filters(),
		Intent:      meta.Intent,
		TopK:        s.opts.TopK,
		SortByLikes: meta.SortByLikes,
		Direction:   meta.SortDirection,
	}
	if meta.Intent.NeedsEmbedding() {
		text := meta.ContentKeywords
		if text == "" {
			text = q.Text()
		}
		emb, err := s.embedder.Embed(ctx, text)
		if err != nil {
			return Response{}, err
		}
		params.Vector = emb.Embedding
	}

	res := s.retriever.Retrieve(ctx, params)

	resp := Response{
		Query:      q.Text(),
		Intent:     meta.Intent,
		Confidence: meta.Confidence,
		Filters:    meta.Filters(),
		Strategy:   res.Strategy,
		Degraded:   res.Outcome == retrieve.OutcomeDegraded,
		Items:      make([]Recommendation, 0, len(res.Items)),
	}

	if len(res.Items) == 0 {
		s.fillRejection(ctx, &resp, meta)
		return resp, nil
	}

	reasons := s.explainItems(ctx, q.Text(), res.Items)
	for i, w := range res.Items {
		rec := Recommendation{
			Title:        w.Title,
			Author:       w.Author,
			Genre:        w.Genre,
			Popularity:   w.Popularity,
			Likes:        w.Likes,
			Summary:      w.Summary,
			CoverURL:     w.CoverURL,
			ReleasedDate: w.ReleasedDate,
			Score:        w.Similarity,
		}
		if w.Boosted > 0 {
			rec.Score = w.Boosted
		}
		if i < len(reasons) {
			rec.Reason = reasons[i]
		}
		resp.Items = append(resp.Items, rec)
	}
	return resp, nil
}

// analyze produces query metadata from whichever analyzer is configured.
// The rule path runs the classifier and then the same quality mapping the
// extractor applies.
func (s *Service) analyze(ctx context.Context, query string) extract.Metadata {
	if s.opts.UseLLM && s.extractor != nil {
		return s.extractor.Extract(ctx, query)
	}

	res := s.classifier.Classify(query)
	tiers, sortByLikes, dir := s.opts.Mapping.MapQuality(res.Quality, res.Filters.Popularity)
	return extract.Metadata{
		Genre:           res.Filters.Genre,
		Popularity:      tiers,
		Quality:         res.Quality,
		ContentKeywords: res.SemanticQuery,
		Intent:          res.Intent,
		Confidence:      res.Confidence,
		SortByLikes:     sortByLikes,
		SortDirection:   dir,
	}
}

// fillRejection attaches the structured no-match context. A stats failure
// degrades to an empty coverage listing rather than failing the request.
func (s *Service) fillRejection(ctx context.Context, resp *Response, meta extract.Metadata) {
	available, err := s.stats.Get(ctx, false)
	if err != nil {
		logger.FromContext(ctx).Warn("stats unavailable for rejection payload", zap.Error(err))
		available = domain.Stats{}
	}
	payload := s.rejecter.Build(resp.Query, meta.Intent, meta.Filters(), available)
	resp.Rejection = &payload
	resp.Message = s.rejecter.Explain(ctx, payload)
}
