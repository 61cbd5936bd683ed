package webtoon

import (
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/toonrec/toonrec/internal/domain"
)

// Hash field names. The embedding blob lives alongside the metadata so a
// single HGETALL reconstructs the full record.
const (
	fieldTitle      = "title"
	fieldAuthor     = "author"
	fieldGenre      = "genre"
	fieldPopularity = "popularity"
	fieldQuality    = "quality"
	fieldLikes      = "likes"
	fieldViews      = "views"
	fieldSummary    = "summary"
	fieldCoverURL   = "cover_url"
	fieldReleased   = "released_date"
	fieldEmbedding  = "embedding"
)

// scoreField is the synthetic field RediSearch returns for the KNN
// distance of the "embedding" vector attribute.
const scoreField = "__embedding_score"

// webtoonFields flattens a webtoon into hash fields for HSET.
func webtoonFields(w domain.Webtoon) map[string]string {
	fields := map[string]string{
		fieldTitle:      w.Title,
		fieldAuthor:     w.Author,
		fieldGenre:      w.Genre,
		fieldPopularity: string(w.Popularity),
		fieldQuality:    w.Quality,
		fieldLikes:      strconv.FormatInt(w.Likes, 10),
		fieldViews:      strconv.FormatInt(w.Views, 10),
		fieldSummary:    w.Summary,
		fieldCoverURL:   w.CoverURL,
		fieldReleased:   w.ReleasedDate,
	}
	if len(w.Vector) > 0 {
		fields[fieldEmbedding] = vectorToBytes(w.Vector)
	}
	return fields
}

// parseWebtoon rebuilds a webtoon from hash fields. Unparseable numerics
// default to zero; an invalid popularity value is kept as-is so callers
// can still display the record.
func parseWebtoon(fields map[string]string) domain.Webtoon {
	w := domain.Webtoon{
		Title:        fields[fieldTitle],
		Author:       fields[fieldAuthor],
		Genre:        fields[fieldGenre],
		Popularity:   domain.Tier(fields[fieldPopularity]),
		Quality:      fields[fieldQuality],
		Summary:      fields[fieldSummary],
		CoverURL:     fields[fieldCoverURL],
		ReleasedDate: fields[fieldReleased],
	}
	if v, err := strconv.ParseInt(fields[fieldLikes], 10, 64); err == nil {
		w.Likes = v
	}
	if v, err := strconv.ParseInt(fields[fieldViews], 10, 64); err == nil {
		w.Views = v
	}
	if blob, ok := fields[fieldEmbedding]; ok {
		w.Vector = bytesToVector(blob)
	}
	return w
}

// keyFor derives a stable hash key from the title.
func (r *Repository) keyFor(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = strings.ReplaceAll(slug, " ", "-")
	return r.prefix + slug
}

func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

func bytesToVector(s string) []float32 {
	if len(s) < 4 {
		return nil
	}
	out := make([]float32, len(s)/4)
	for i := range out {
		bits := binary.LittleEndian.Uint32([]byte(s[i*4 : i*4+4]))
		out[i] = math.Float32frombits(bits)
	}
	return out
}
