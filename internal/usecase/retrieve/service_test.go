package retrieve

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/toonrec/toonrec/internal/domain"
	"github.com/toonrec/toonrec/internal/usecase/rerank"
)

type stubRepo struct {
	byAttr     []domain.Webtoon
	byAttrErr  error
	semantic   []domain.Webtoon
	semErr     error
	vectors    []domain.Webtoon
	vectorsErr error

	attrLimit int
	semLimit  int
}

func (r *stubRepo) ByAttributes(_ context.Context, _ domain.Filters, limit int) ([]domain.Webtoon, error) {
	r.attrLimit = limit
	return r.byAttr, r.byAttrErr
}

func (r *stubRepo) Semantic(_ context.Context, _ []float32, limit int, _ float64) ([]domain.Webtoon, error) {
	r.semLimit = limit
	return r.semantic, r.semErr
}

func (r *stubRepo) ScanVectors(_ context.Context) ([]domain.Webtoon, error) {
	return r.vectors, r.vectorsErr
}

func newService(repo Repository) *Service {
	return New(repo, rerank.New(), 0.25)
}

func attrParams(topK int) Params {
	return Params{
		Intent:    domain.IntentAttribute,
		Filters:   domain.Filters{Genre: "Action"},
		TopK:      topK,
		Direction: domain.SortDescending,
	}
}

func TestRetrieve_AttributeAssignsExactScoreAndTruncates(t *testing.T) {
	repo := &stubRepo{}
	for i := 0; i < 8; i++ {
		repo.byAttr = append(repo.byAttr, domain.Webtoon{Title: fmt.Sprintf("t%d", i)})
	}
	svc := newService(repo)

	res := svc.Retrieve(context.Background(), attrParams(5))
	if repo.attrLimit != 10 {
		t.Fatalf("expected 2x headroom limit 10, got %d", repo.attrLimit)
	}
	if len(res.Items) != 5 {
		t.Fatalf("expected page of 5, got %d", len(res.Items))
	}
	for _, w := range res.Items {
		if w.Similarity != exactMatchScore {
			t.Fatalf("expected synthetic similarity %v, got %v", exactMatchScore, w.Similarity)
		}
	}
	if res.Strategy != "attribute" || res.Outcome != OutcomeOK {
		t.Fatalf("unexpected result meta: %s/%s", res.Strategy, res.Outcome)
	}
}

func TestRetrieve_AttributeStoreFailureYieldsEmpty(t *testing.T) {
	repo := &stubRepo{byAttrErr: errors.New("redis down")}
	svc := newService(repo)

	res := svc.Retrieve(context.Background(), attrParams(5))
	if len(res.Items) != 0 {
		t.Fatalf("attribute store failure must yield empty list, got %+v", res.Items)
	}
	if res.Strategy != "attribute" || res.Outcome != OutcomeEmpty {
		t.Fatalf("unexpected result meta: %s/%s", res.Strategy, res.Outcome)
	}
}

func TestRetrieve_ContentUsesSemanticSearch(t *testing.T) {
	repo := &stubRepo{semantic: []domain.Webtoon{
		{Title: "a", Similarity: 0.9},
		{Title: "b", Similarity: 0.8},
	}}
	svc := newService(repo)

	res := svc.Retrieve(context.Background(), Params{
		Intent: domain.IntentContent,
		Vector: []float32{1, 0},
		TopK:   5,
	})
	if repo.semLimit != 15 {
		t.Fatalf("expected 3x headroom limit 15, got %d", repo.semLimit)
	}
	if res.Strategy != "semantic" || res.Outcome != OutcomeOK {
		t.Fatalf("unexpected result meta: %s/%s", res.Strategy, res.Outcome)
	}
	if res.Items[0].Title != "a" {
		t.Fatalf("expected highest similarity first, got %q", res.Items[0].Title)
	}
}

func TestRetrieve_ContentZeroSemanticMatchesIsEmpty(t *testing.T) {
	repo := &stubRepo{byAttr: []domain.Webtoon{
		{Title: "unrelated top-likes webtoon", Likes: 999999},
	}}
	svc := newService(repo)

	res := svc.Retrieve(context.Background(), Params{
		Intent: domain.IntentContent,
		Vector: []float32{1, 0},
		TopK:   5,
	})
	if len(res.Items) != 0 {
		t.Fatalf("zero semantic matches must not be padded, got %+v", res.Items)
	}
	if res.Strategy != "semantic" || res.Outcome != OutcomeEmpty {
		t.Fatalf("unexpected result meta: %s/%s", res.Strategy, res.Outcome)
	}
	if repo.attrLimit != 0 {
		t.Fatal("healthy empty semantic result must not hit the attribute fallback")
	}
}

func TestRetrieve_ContentFallsBackToManualScoring(t *testing.T) {
	repo := &stubRepo{
		semErr: errors.New("index missing"),
		vectors: []domain.Webtoon{
			{Title: "close", Vector: []float32{1, 0}},
			{Title: "far", Vector: []float32{0, 1}},
			{Title: "mid", Vector: []float32{0.7, 0.7}},
		},
	}
	svc := newService(repo)

	res := svc.Retrieve(context.Background(), Params{
		Intent: domain.IntentContent,
		Vector: []float32{1, 0},
		TopK:   5,
	})
	if res.Strategy != "manual" || res.Outcome != OutcomeDegraded {
		t.Fatalf("unexpected result meta: %s/%s", res.Strategy, res.Outcome)
	}
	// Every scanned vector stays in, ranked by raw dot product.
	if len(res.Items) != 3 {
		t.Fatalf("expected all 3 scanned candidates, got %d", len(res.Items))
	}
	if res.Items[0].Title != "close" || res.Items[2].Title != "far" {
		t.Fatalf("expected dot-product order close > mid > far, got %+v", res.Items)
	}
}

func TestRetrieve_ContentCascadeEndsAtAttributes(t *testing.T) {
	repo := &stubRepo{
		semErr:     errors.New("index missing"),
		vectorsErr: errors.New("scan failed"),
		byAttr:     []domain.Webtoon{{Title: "fallback"}},
	}
	svc := newService(repo)

	res := svc.Retrieve(context.Background(), Params{
		Intent: domain.IntentContent,
		Vector: []float32{1},
		TopK:   5,
	})
	if res.Strategy != "attribute" || res.Outcome != OutcomeDegraded {
		t.Fatalf("unexpected result meta: %s/%s", res.Strategy, res.Outcome)
	}
	if len(res.Items) != 1 || res.Items[0].Similarity != exactMatchScore {
		t.Fatalf("expected one attribute fallback item at %v", exactMatchScore)
	}
}

func TestRetrieve_ContentEverythingFailsReturnsEmpty(t *testing.T) {
	repo := &stubRepo{
		semErr:     errors.New("down"),
		vectorsErr: errors.New("down"),
		byAttrErr:  errors.New("down"),
	}
	svc := newService(repo)

	res := svc.Retrieve(context.Background(), Params{
		Intent: domain.IntentContent,
		Vector: []float32{1},
		TopK:   5,
	})
	if res.Outcome != OutcomeEmpty || len(res.Items) != 0 {
		t.Fatalf("expected empty outcome, got %s with %d items", res.Outcome, len(res.Items))
	}
}

func TestRetrieve_HybridFiltersInProcess(t *testing.T) {
	repo := &stubRepo{semantic: []domain.Webtoon{
		{Title: "action hit", Genre: "Action", Popularity: domain.TierHit, Similarity: 0.9},
		{Title: "romance hit", Genre: "Romance", Popularity: domain.TierHit, Similarity: 0.88},
		{Title: "action flop", Genre: "Action", Popularity: domain.TierUnpopular, Similarity: 0.85},
	}}
	svc := newService(repo)

	res := svc.Retrieve(context.Background(), Params{
		Intent:  domain.IntentHybrid,
		Vector:  []float32{1},
		Filters: domain.Filters{Genre: "Action", Popularity: []domain.Tier{domain.TierHit}},
		TopK:    1,
	})
	if len(res.Items) != 1 || res.Items[0].Title != "action hit" {
		t.Fatalf("expected the filtered semantic match, got %+v", res.Items)
	}
	if res.Strategy != "hybrid" || res.Outcome != OutcomeOK {
		t.Fatalf("unexpected result meta: %s/%s", res.Strategy, res.Outcome)
	}
}

func TestRetrieve_HybridBackfillsAndDedupes(t *testing.T) {
	repo := &stubRepo{
		semantic: []domain.Webtoon{
			{Title: "match", Genre: "Action", Similarity: 0.9},
		},
		byAttr: []domain.Webtoon{
			{Title: "match", Genre: "Action"},
			{Title: "padding", Genre: "Action"},
		},
	}
	svc := newService(repo)

	res := svc.Retrieve(context.Background(), Params{
		Intent:  domain.IntentHybrid,
		Vector:  []float32{1},
		Filters: domain.Filters{Genre: "Action"},
		TopK:    3,
	})
	if len(res.Items) != 2 {
		t.Fatalf("expected dedupe to 2 items, got %d", len(res.Items))
	}
	if res.Items[0].Title != "match" || res.Items[0].Similarity != 0.9 {
		t.Fatalf("semantic match must keep its real score, got %+v", res.Items[0])
	}
	if res.Items[1].Title != "padding" || res.Items[1].Similarity != backfillScore {
		t.Fatalf("backfill must carry synthetic score %v, got %+v", backfillScore, res.Items[1])
	}
}

func TestRetrieve_HybridEmptySemanticFallsBackToAttributes(t *testing.T) {
	repo := &stubRepo{byAttr: []domain.Webtoon{{Title: "fallback", Genre: "Drama"}}}
	svc := newService(repo)

	res := svc.Retrieve(context.Background(), Params{
		Intent:  domain.IntentHybrid,
		Vector:  []float32{1},
		Filters: domain.Filters{Genre: "Drama"},
		TopK:    5,
	})
	if res.Strategy != "hybrid" || res.Outcome != OutcomeDegraded {
		t.Fatalf("unexpected result meta: %s/%s", res.Strategy, res.Outcome)
	}
	if len(res.Items) != 1 || res.Items[0].Title != "fallback" {
		t.Fatalf("expected attribute fallback, got %+v", res.Items)
	}
}

func TestRetrieve_HybridTotalFailureReturnsEmpty(t *testing.T) {
	repo := &stubRepo{
		semErr:    errors.New("down"),
		byAttrErr: errors.New("down"),
	}
	svc := newService(repo)

	res := svc.Retrieve(context.Background(), Params{
		Intent:  domain.IntentHybrid,
		Vector:  []float32{1},
		Filters: domain.Filters{Genre: "Drama"},
		TopK:    5,
	})
	if res.Strategy != "hybrid" || res.Outcome != OutcomeEmpty || len(res.Items) != 0 {
		t.Fatalf("expected empty hybrid result, got %s/%s with %d items",
			res.Strategy, res.Outcome, len(res.Items))
	}
}

func TestRetrieve_SortByLikesAppliesDirection(t *testing.T) {
	repo := &stubRepo{byAttr: []domain.Webtoon{
		{Title: "big", Likes: 900},
		{Title: "small", Likes: 10},
	}}
	svc := newService(repo)

	p := attrParams(5)
	p.SortByLikes = true
	p.Direction = domain.SortAscending

	res := svc.Retrieve(context.Background(), p)
	if res.Items[0].Title != "small" {
		t.Fatalf("expected ascending likes order, got %q first", res.Items[0].Title)
	}
}
