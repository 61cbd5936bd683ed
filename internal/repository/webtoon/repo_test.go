package webtoon

import (
	"testing"

	"github.com/toonrec/toonrec/internal/domain"
)

func TestBuildAttributeQuery(t *testing.T) {
	cases := []struct {
		name    string
		filters domain.Filters
		want    string
	}{
		{"empty", domain.Filters{}, "*"},
		{"genre", domain.Filters{Genre: "Action"}, "@genre:{Action}"},
		{
			"tiers",
			domain.Filters{Popularity: []domain.Tier{domain.TierPopular, domain.TierVeryPopular}},
			"@popularity:{Popular | VeryPopular}",
		},
		{
			"both",
			domain.Filters{Genre: "Sci-Fi", Popularity: []domain.Tier{domain.TierHit}},
			`@genre:{Sci\-Fi} @popularity:{Hit}`,
		},
		{
			"genre with space",
			domain.Filters{Genre: "Slice of Life"},
			`@genre:{Slice\ of\ Life}`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := buildAttributeQuery(tc.filters); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestVectorBytesRoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 0, 3.75}
	blob := vectorToBytes(in)
	if len(blob) != 16 {
		t.Fatalf("expected 16 bytes, got %d", len(blob))
	}
	out := bytesToVector(blob)
	if len(out) != len(in) {
		t.Fatalf("expected %d floats, got %d", len(in), len(out))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("position %d: got %v, want %v", i, out[i], in[i])
		}
	}
}

func TestBytesToVector_TruncatedBlob(t *testing.T) {
	if got := bytesToVector("ab"); got != nil {
		t.Fatalf("expected nil for truncated blob, got %v", got)
	}
}

func TestParseWebtoon(t *testing.T) {
	w := parseWebtoon(map[string]string{
		fieldTitle:      "Tower Climber",
		fieldGenre:      "Fantasy",
		fieldPopularity: "Hit",
		fieldLikes:      "12345",
		fieldViews:      "not-a-number",
	})
	if w.Title != "Tower Climber" || w.Genre != "Fantasy" {
		t.Fatalf("metadata lost: %+v", w)
	}
	if w.Popularity != domain.TierHit {
		t.Fatalf("expected Hit tier, got %q", w.Popularity)
	}
	if w.Likes != 12345 {
		t.Fatalf("expected likes 12345, got %d", w.Likes)
	}
	if w.Views != 0 {
		t.Fatalf("unparseable views must default to zero, got %d", w.Views)
	}
}

func TestWebtoonFields_SkipsEmptyVector(t *testing.T) {
	fields := webtoonFields(domain.Webtoon{Title: "X", Likes: 7})
	if _, ok := fields[fieldEmbedding]; ok {
		t.Fatal("vectorless record must not write an embedding field")
	}
	if fields[fieldLikes] != "7" {
		t.Fatalf("expected likes \"7\", got %q", fields[fieldLikes])
	}
}

func TestKeyFor(t *testing.T) {
	r := &Repository{prefix: "toonrec:webtoons:"}
	if got := r.keyFor("  Tower Climber "); got != "toonrec:webtoons:tower-climber" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestTiersInOrder(t *testing.T) {
	set := map[string]struct{}{
		"Unpopular": {},
		"Hit":       {},
		"Popular":   {},
		"Mystery":   {},
	}
	got := tiersInOrder(set)
	want := []string{"Hit", "Popular", "Unpopular", "Mystery"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
