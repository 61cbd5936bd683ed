package webtoon

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/toonrec/toonrec/internal/domain"
)

// ByAttributes returns webtoons matching the filters, ordered by likes
// descending on the server side.
func (r *Repository) ByAttributes(ctx context.Context, f domain.Filters, limit int) ([]domain.Webtoon, error) {
	if limit <= 0 {
		return nil, nil
	}

	args := []string{
		r.index, buildAttributeQuery(f),
		"SORTBY", fieldLikes, "DESC",
		"LIMIT", "0", strconv.Itoa(limit),
		"DIALECT", "2",
	}

	cmd := r.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := r.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, fmt.Errorf("%w: attribute search: %w", domain.ErrStoreUnavailable, err)
	}
	return parseSearchResult(raw, 0)
}

// Semantic runs a KNN search over the embedding field. Results carry
// cosine similarity and are already ordered best-first by the server;
// entries below minScore are dropped.
func (r *Repository) Semantic(ctx context.Context, vector []float32, limit int, minScore float64) ([]domain.Webtoon, error) {
	if len(vector) == 0 || limit <= 0 {
		return nil, nil
	}

	query := fmt.Sprintf("*=>[KNN %d @%s $BLOB]", limit, fieldEmbedding)
	args := []string{
		r.index, query,
		"PARAMS", "2", "BLOB", vectorToBytes(vector),
		"SORTBY", scoreField,
		"LIMIT", "0", strconv.Itoa(limit),
		"DIALECT", "2",
	}

	cmd := r.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := r.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, fmt.Errorf("%w: knn search: %w", domain.ErrStoreUnavailable, err)
	}
	return parseSearchResult(raw, minScore)
}

// ScanVectors loads the catalog with embeddings for in-process scoring,
// capped at the configured scan limit.
func (r *Repository) ScanVectors(ctx context.Context) ([]domain.Webtoon, error) {
	records, err := r.scanRecords(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Webtoon, 0, len(records))
	for _, fields := range records {
		w := parseWebtoon(fields)
		if len(w.Vector) > 0 {
			out = append(out, w)
		}
	}
	return out, nil
}

// Stats projects catalog coverage: distinct genres, popularity tiers and
// quality labels plus the total count. Distinct values come from a capped
// scan; the total from the index, so it stays exact even past the cap.
func (r *Repository) Stats(ctx context.Context) (domain.Stats, error) {
	total, err := r.count(ctx)
	if err != nil {
		return domain.Stats{}, err
	}

	records, err := r.scanRecords(ctx)
	if err != nil {
		return domain.Stats{}, err
	}

	genres := make(map[string]struct{})
	tiers := make(map[string]struct{})
	qualities := make(map[string]struct{})
	for _, fields := range records {
		if g := fields[fieldGenre]; g != "" {
			genres[g] = struct{}{}
		}
		if p := fields[fieldPopularity]; p != "" {
			tiers[p] = struct{}{}
		}
		if q := fields[fieldQuality]; q != "" {
			qualities[q] = struct{}{}
		}
	}

	return domain.Stats{
		AvailableGenres:     sortedKeys(genres),
		AvailablePopularity: tiersInOrder(tiers),
		AvailableQuality:    sortedKeys(qualities),
		TotalWebtoons:       total,
	}, nil
}

// Upsert writes webtoons as hashes in a single round-trip.
func (r *Repository) Upsert(ctx context.Context, items []domain.Webtoon) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, len(items))
	for i, w := range items {
		cmd := r.b().Hset().Key(r.keyFor(w.Title)).FieldValue()
		for k, v := range webtoonFields(w) {
			cmd = cmd.FieldValue(k, v)
		}
		cmds[i] = cmd.Build()
	}

	results := r.client.DoMulti(ctx, cmds...)
	for i, res := range results {
		if err := res.Error(); err != nil {
			return fmt.Errorf("%w: upsert %q: %w", domain.ErrStoreUnavailable, items[i].Title, err)
		}
	}
	return nil
}

// Delete removes a webtoon by title.
func (r *Repository) Delete(ctx context.Context, title string) error {
	cmd := r.b().Del().Key(r.keyFor(title)).Build()
	if err := r.do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("%w: delete %q: %w", domain.ErrStoreUnavailable, title, err)
	}
	return nil
}

func (r *Repository) count(ctx context.Context) (int, error) {
	cmd := r.b().Arbitrary("FT.SEARCH").Args(r.index, "*", "LIMIT", "0", "0").Build()
	raw, err := r.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", domain.ErrStoreUnavailable, err)
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

// scanRecords loads up to scanLimit hashes under the key prefix.
func (r *Repository) scanRecords(ctx context.Context) ([]map[string]string, error) {
	var keys []string
	var cursor uint64

	for {
		cmd := r.b().Scan().Cursor(cursor).Match(r.prefix + "*").Count(100).Build()
		res, err := r.do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("%w: scan: %w", domain.ErrStoreUnavailable, err)
		}
		keys = append(keys, res.Elements...)
		cursor = res.Cursor
		if cursor == 0 || len(keys) >= r.scanLimit {
			break
		}
	}
	if len(keys) > r.scanLimit {
		keys = keys[:r.scanLimit]
	}
	if len(keys) == 0 {
		return nil, nil
	}

	cmds := make([]rueidis.Completed, len(keys))
	for i, key := range keys {
		cmds[i] = r.b().Hgetall().Key(key).Build()
	}

	results := r.client.DoMulti(ctx, cmds...)
	out := make([]map[string]string, 0, len(results))
	for i, res := range results {
		m, err := res.AsStrMap()
		if err != nil {
			return nil, fmt.Errorf("%w: hgetall %s: %w", domain.ErrStoreUnavailable, keys[i], err)
		}
		if len(m) > 0 {
			out = append(out, m)
		}
	}
	return out, nil
}

// --- Result parsing ---

// parseSearchResult decodes the RESP2 FT.SEARCH reply.
// 2-stride: [total, key1, fields1, key2, fields2, ...]
func parseSearchResult(raw []rueidis.RedisMessage, minScore float64) ([]domain.Webtoon, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return nil, nil
	}

	out := make([]domain.Webtoon, 0, total)
	for i := 1; i+1 < len(raw); i += 2 {
		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}
		m := parseFieldPairs(fields)

		var similarity float64
		if scoreStr, ok := m[scoreField]; ok {
			if dist, err := strconv.ParseFloat(scoreStr, 64); err == nil {
				similarity = max(0, 1.0-dist) // cosine distance → similarity
			}
			delete(m, scoreField)
		}
		if similarity < minScore {
			continue
		}

		w := parseWebtoon(m)
		w.Similarity = similarity
		out = append(out, w)
	}
	return out, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// --- Query building ---

// buildAttributeQuery translates filters into an FT.SEARCH query string.
func buildAttributeQuery(f domain.Filters) string {
	var parts []string
	if f.Genre != "" {
		parts = append(parts, fmt.Sprintf("@%s:{%s}", fieldGenre, tagEscaper.Replace(f.Genre)))
	}
	if len(f.Popularity) > 0 {
		tiers := make([]string, len(f.Popularity))
		for i, t := range f.Popularity {
			tiers[i] = tagEscaper.Replace(string(t))
		}
		parts = append(parts, fmt.Sprintf("@%s:{%s}", fieldPopularity, strings.Join(tiers, " | ")))
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// tiersInOrder lists present tiers in descending popularity order rather
// than alphabetically.
func tiersInOrder(set map[string]struct{}) []string {
	var out []string
	for _, t := range domain.AllTiers {
		if _, ok := set[string(t)]; ok {
			out = append(out, string(t))
		}
	}
	// Unknown labels go last, alphabetically.
	var unknown []string
	for k := range set {
		if !domain.Tier(k).Valid() {
			unknown = append(unknown, k)
		}
	}
	sort.Strings(unknown)
	return append(out, unknown...)
}
