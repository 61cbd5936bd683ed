// Package httpapi is the chi-based HTTP surface of the recommendation
// service.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/toonrec/toonrec/internal/domain"
	"github.com/toonrec/toonrec/internal/usecase/classify"
	"github.com/toonrec/toonrec/internal/usecase/recommend"
	"github.com/toonrec/toonrec/internal/version"
)

// Error response codes.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeRateLimited      = "rate_limited"
	codeProviderError    = "provider_error"
	codeStoreUnavailable = "store_unavailable"
	codeInternalError    = "internal_error"
)

// Recommender runs the full recommendation pipeline.
type Recommender interface {
	Recommend(ctx context.Context, query string) (recommend.Response, error)
}

// QueryClassifier exposes the rule-based analyzer for the debug endpoint.
type QueryClassifier interface {
	Classify(text string) classify.Result
}

// StatsProvider serves catalog coverage.
type StatsProvider interface {
	Get(ctx context.Context, forceRefresh bool) (domain.Stats, error)
}

// Pinger checks store connectivity for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Loader ingests catalog records.
type Loader interface {
	Load(ctx context.Context, items []domain.Webtoon) (int, error)
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server holds the HTTP handlers.
type Server struct {
	recommender   Recommender
	classifier    QueryClassifier
	stats         StatsProvider
	store         Pinger
	loader        Loader
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. loader may be nil, which disables
// the ingestion endpoint.
func NewServer(
	recommender Recommender,
	classifier QueryClassifier,
	stats StatsProvider,
	store Pinger,
	loader Loader,
	logger *zap.Logger,
) *Server {
	s := &Server{
		recommender: recommender,
		classifier:  classifier,
		stats:       stats,
		store:       store,
		loader:      loader,
		logger:      logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrRateLimited, http.StatusTooManyRequests, codeRateLimited),
		sentinelHandler(domain.ErrEmbeddingProvider, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrGeneration, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, codeStoreUnavailable),
	}
	return s
}

// Routes mounts all endpoints on the router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/recommend", s.Recommend)
		r.Post("/classify", s.Classify)
		r.Get("/stats", s.Stats)
		if s.loader != nil {
			r.Post("/webtoons", s.LoadWebtoons)
		}
	})
	r.Get("/health", s.Health)
	r.Get("/metrics", s.Metrics)
}

type queryRequest struct {
	Query string `json:"query"`
}

// Recommend handles POST /api/v1/recommend.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	resp, err := s.recommender.Recommend(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// classifyResponse is the debug view of the rule-based analyzer.
type classifyResponse struct {
	Intent        domain.Intent        `json:"intent"`
	Filters       domain.Filters       `json:"filters"`
	Quality       domain.QualityIntent `json:"quality,omitempty"`
	SemanticQuery string               `json:"semantic_query"`
	Confidence    float64              `json:"confidence"`
}

// Classify handles POST /api/v1/classify. It runs only the rule-based
// analyzer, without validation or retrieval, for inspecting how a query
// would be routed.
func (s *Server) Classify(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "Query is required")
		return
	}

	res := s.classifier.Classify(req.Query)
	writeJSON(w, http.StatusOK, classifyResponse{
		Intent:        res.Intent,
		Filters:       res.Filters,
		Quality:       res.Quality,
		SemanticQuery: res.SemanticQuery,
		Confidence:    res.Confidence,
	})
}

// Stats handles GET /api/v1/stats. ?refresh=true bypasses the cache.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	refresh := r.URL.Query().Get("refresh") == "true"

	st, err := s.stats.Get(r.Context(), refresh)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// webtoonRecord is the ingestion wire format.
type webtoonRecord struct {
	Title        string    `json:"title"`
	Author       string    `json:"author"`
	Genre        string    `json:"genre"`
	Popularity   string    `json:"popularity"`
	Quality      string    `json:"quality"`
	Likes        int64     `json:"likes"`
	Views        int64     `json:"views"`
	Summary      string    `json:"summary"`
	CoverURL     string    `json:"cover_url"`
	ReleasedDate string    `json:"released_date"`
	Embedding    []float32 `json:"embedding,omitempty"`
}

// LoadWebtoons handles POST /api/v1/webtoons: bulk catalog ingestion.
// Records without an embedding are embedded server-side.
func (s *Server) LoadWebtoons(w http.ResponseWriter, r *http.Request) {
	var records []webtoonRecord
	if err := json.NewDecoder(r.Body).Decode(&records); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(records) == 0 {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "At least one record is required")
		return
	}

	items := make([]domain.Webtoon, len(records))
	for i, rec := range records {
		items[i] = domain.Webtoon{
			Title:        rec.Title,
			Author:       rec.Author,
			Genre:        rec.Genre,
			Popularity:   domain.Tier(rec.Popularity),
			Quality:      rec.Quality,
			Likes:        rec.Likes,
			Views:        rec.Views,
			Summary:      rec.Summary,
			CoverURL:     rec.CoverURL,
			ReleasedDate: rec.ReleasedDate,
			Vector:       rec.Embedding,
		}
	}

	n, err := s.loader.Load(r.Context(), items)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"loaded": n})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	httpStatus := http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Warn("health check failed", zap.Error(err))
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]string{
		"status":  status,
		"version": version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client
// without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrQueryTooShort,
		domain.ErrQueryTooLong,
		domain.ErrQueryNoContent,
		domain.ErrInvalidQuery,
		domain.ErrRateLimited,
		domain.ErrEmbeddingProvider,
		domain.ErrGeneration,
		domain.ErrStoreUnavailable,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
