package extract

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/toonrec/toonrec/internal/domain"
)

type mockGenerator struct {
	response string
	err      error
	prompts  []string
}

func (m *mockGenerator) Generate(_ context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.response, m.err
}

func TestExtract_ParsesResponse(t *testing.T) {
	gen := &mockGenerator{response: `{
		"genre": "Action",
		"popularity": ["Hit"],
		"quality_intent": null,
		"content_keywords": "overpowered mc",
		"query_type": "hybrid",
		"confidence": 0.9
	}`}
	svc := New(gen, DefaultMappingPolicy())

	md := svc.Extract(context.Background(), "hit action webtoon with overpowered mc")

	if md.Genre != "Action" {
		t.Errorf("genre = %q, want Action", md.Genre)
	}
	if !reflect.DeepEqual(md.Popularity, []domain.Tier{domain.TierHit}) {
		t.Errorf("popularity = %v, want [Hit]", md.Popularity)
	}
	if md.Intent != domain.IntentHybrid {
		t.Errorf("intent = %s, want hybrid", md.Intent)
	}
	if md.ContentKeywords != "overpowered mc" {
		t.Errorf("content keywords = %q", md.ContentKeywords)
	}
	if md.SortByLikes {
		t.Error("no quality intent should not enable engagement sorting")
	}
}

func TestExtract_StripsMarkdownFences(t *testing.T) {
	gen := &mockGenerator{response: "```json\n{\"genre\": null, \"popularity\": null, " +
		"\"quality_intent\": \"excellent\", \"content_keywords\": null, " +
		"\"query_type\": \"attribute\", \"confidence\": 0.95}\n```"}
	svc := New(gen, DefaultMappingPolicy())

	md := svc.Extract(context.Background(), "masterpiece webtoon")

	if !reflect.DeepEqual(md.Popularity, []domain.Tier{domain.TierHit}) {
		t.Errorf("popularity = %v, want [Hit] via excellent mapping", md.Popularity)
	}
	if !md.SortByLikes {
		t.Error("excellent quality must enable engagement sorting")
	}
}

func TestExtract_GeneratorFailureDegrades(t *testing.T) {
	gen := &mockGenerator{err: errors.New("provider down")}
	svc := New(gen, DefaultMappingPolicy())

	md := svc.Extract(context.Background(), "popular webtoon")

	if md.Intent != domain.IntentContent {
		t.Errorf("intent = %s, want content fallback", md.Intent)
	}
	if md.Confidence != fallbackConfidence {
		t.Errorf("confidence = %v, want %v", md.Confidence, fallbackConfidence)
	}
	if !md.Filters().IsEmpty() {
		t.Errorf("fallback filters should be empty, got %+v", md.Filters())
	}
}

func TestExtract_UnparseableJSONDegrades(t *testing.T) {
	gen := &mockGenerator{response: "I think the user wants something popular."}
	svc := New(gen, DefaultMappingPolicy())

	md := svc.Extract(context.Background(), "popular webtoon")

	if md.Confidence != fallbackConfidence {
		t.Errorf("confidence = %v, want %v", md.Confidence, fallbackConfidence)
	}
}

func TestExtract_DropsUnknownTiers(t *testing.T) {
	gen := &mockGenerator{response: `{"genre": null, "popularity": ["Popular", "Mythic"],
		"quality_intent": null, "content_keywords": null,
		"query_type": "attribute", "confidence": 0.9}`}
	svc := New(gen, DefaultMappingPolicy())

	md := svc.Extract(context.Background(), "popular webtoon")

	if !reflect.DeepEqual(md.Popularity, []domain.Tier{domain.TierPopular}) {
		t.Errorf("popularity = %v, want unknown tier dropped", md.Popularity)
	}
}
