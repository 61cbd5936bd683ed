package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/toonrec/toonrec/internal/domain"
	"github.com/toonrec/toonrec/internal/usecase/classify"
	"github.com/toonrec/toonrec/internal/usecase/recommend"
)

type stubRecommender struct {
	resp recommend.Response
	err  error
}

func (s *stubRecommender) Recommend(_ context.Context, _ string) (recommend.Response, error) {
	return s.resp, s.err
}

type stubStats struct {
	stats   domain.Stats
	err     error
	refresh bool
}

func (s *stubStats) Get(_ context.Context, forceRefresh bool) (domain.Stats, error) {
	s.refresh = forceRefresh
	return s.stats, s.err
}

type stubPinger struct{ err error }

func (s *stubPinger) Ping(_ context.Context) error { return s.err }

func newTestServer(rec Recommender, st StatsProvider, pinger Pinger) http.Handler {
	if rec == nil {
		rec = &stubRecommender{}
	}
	if st == nil {
		st = &stubStats{}
	}
	if pinger == nil {
		pinger = &stubPinger{}
	}
	srv := NewServer(rec, classify.New(), st, pinger, nil, zap.NewNop())
	r := chi.NewRouter()
	srv.Routes(r)
	return r
}

func postJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRecommend_OK(t *testing.T) {
	rec := &stubRecommender{resp: recommend.Response{
		Query:  "popular action webtoons",
		Intent: domain.IntentAttribute,
		Items: []recommend.Recommendation{
			{Title: "Sound of Blades", Genre: "Action", Score: 0.95},
		},
	}}
	h := newTestServer(rec, nil, nil)

	rr := postJSON(t, h, "/api/v1/recommend", `{"query": "popular action webtoons"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp recommend.Response
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Items) != 1 || resp.Items[0].Title != "Sound of Blades" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestRecommend_ErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"invalid query", fmt.Errorf("%w: too short", domain.ErrInvalidQuery), http.StatusBadRequest, codeValidationFailed},
		{"rate limited", fmt.Errorf("call: %w", domain.ErrRateLimited), http.StatusTooManyRequests, codeRateLimited},
		{"embedding provider", fmt.Errorf("call: %w", domain.ErrEmbeddingProvider), http.StatusBadGateway, codeProviderError},
		{"store down", fmt.Errorf("call: %w", domain.ErrStoreUnavailable), http.StatusServiceUnavailable, codeStoreUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, codeInternalError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestServer(&stubRecommender{err: tc.err}, nil, nil)
			rr := postJSON(t, h, "/api/v1/recommend", `{"query": "whatever works"}`)
			if rr.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, rr.Code)
			}
			var e errorResponse
			if err := json.NewDecoder(rr.Body).Decode(&e); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if e.Code != tc.wantCode {
				t.Fatalf("expected code %q, got %q", tc.wantCode, e.Code)
			}
		})
	}
}

func TestRecommend_BadBody(t *testing.T) {
	h := newTestServer(nil, nil, nil)
	rr := postJSON(t, h, "/api/v1/recommend", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestClassify_DebugView(t *testing.T) {
	h := newTestServer(nil, nil, nil)

	rr := postJSON(t, h, "/api/v1/classify", `{"query": "popular action webtoons"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp classifyResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Intent != domain.IntentAttribute {
		t.Fatalf("expected attribute intent, got %s", resp.Intent)
	}
	if resp.Filters.Genre != "Action" {
		t.Fatalf("expected Action genre, got %q", resp.Filters.Genre)
	}
}

func TestClassify_EmptyQuery(t *testing.T) {
	h := newTestServer(nil, nil, nil)
	rr := postJSON(t, h, "/api/v1/classify", `{"query": "   "}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestStats_RefreshParam(t *testing.T) {
	st := &stubStats{stats: domain.Stats{TotalWebtoons: 9}}
	h := newTestServer(nil, st, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats?refresh=true", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !st.refresh {
		t.Fatal("refresh=true must bypass the cache")
	}
}

type stubLoader struct {
	items []domain.Webtoon
	err   error
}

func (l *stubLoader) Load(_ context.Context, items []domain.Webtoon) (int, error) {
	l.items = items
	return len(items), l.err
}

func TestLoadWebtoons(t *testing.T) {
	loader := &stubLoader{}
	srv := NewServer(&stubRecommender{}, classify.New(), &stubStats{}, &stubPinger{}, loader, zap.NewNop())
	r := chi.NewRouter()
	srv.Routes(r)

	body := `[{"title": "Tower Climber", "genre": "Fantasy", "popularity": "Hit", "likes": 100}]`
	rr := postJSON(t, r, "/api/v1/webtoons", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(loader.items) != 1 || loader.items[0].Popularity != domain.TierHit {
		t.Fatalf("record not converted: %+v", loader.items)
	}

	rr = postJSON(t, r, "/api/v1/webtoons", `[]`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("empty batch must be rejected, got %d", rr.Code)
	}
}

func TestLoadWebtoons_DisabledWithoutLoader(t *testing.T) {
	h := newTestServer(nil, nil, nil)
	rr := postJSON(t, h, "/api/v1/webtoons", `[{"title": "X"}]`)
	if rr.Code != http.StatusNotFound && rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected route absent, got %d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(nil, nil, &stubPinger{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	h = newTestServer(nil, nil, &stubPinger{err: errors.New("refused")})
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when store is down, got %d", rr.Code)
	}
}
