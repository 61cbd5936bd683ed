package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/toonrec/toonrec/internal/domain"
	"github.com/toonrec/toonrec/internal/logger"
)

var (
	codeFence    = regexp.MustCompile("```(?:json)?")
	numberedLine = regexp.MustCompile(`^\s*\d+[.)]\s*(.+)$`)
)

// explainItems asks the language model for one short reason per item.
// Explanations are decoration: any failure returns nil and the response
// ships without reasons.
func (s *Service) explainItems(ctx context.Context, query string, items []domain.Webtoon) []string {
	if s.explainer == nil || len(items) == 0 {
		return nil
	}

	raw, err := s.explainer.Generate(ctx, explainPrompt(query, items))
	if err != nil {
		logger.FromContext(ctx).Warn("item explanation generation failed", zap.Error(err))
		return nil
	}

	reasons := parseReasons(raw)
	if len(reasons) != len(items) {
		logger.FromContext(ctx).Warn("item explanation count mismatch",
			zap.Int("want", len(items)), zap.Int("got", len(reasons)))
		return nil
	}
	return reasons
}

// parseReasons accepts either a JSON string array or a numbered list.
func parseReasons(raw string) []string {
	cleaned := strings.TrimSpace(codeFence.ReplaceAllString(raw, ""))

	var arr []string
	if err := json.Unmarshal([]byte(cleaned), &arr); err == nil {
		for i := range arr {
			arr[i] = strings.TrimSpace(arr[i])
		}
		return arr
	}

	var out []string
	for _, line := range strings.Split(cleaned, "\n") {
		if m := numberedLine.FindStringSubmatch(line); m != nil {
			out = append(out, strings.TrimSpace(m[1]))
		}
	}
	return out
}

func explainPrompt(query string, items []domain.Webtoon) string {
	var b strings.Builder
	b.WriteString("You are a webtoon recommendation assistant. For each webtoon below, ")
	b.WriteString("write one short sentence explaining why it fits the user's request. ")
	b.WriteString("Respond with a JSON array of strings, one per webtoon, in the same order. ")
	b.WriteString("Reply in the language of the user's query.\n\n")
	fmt.Fprintf(&b, "User query: %q\n\nWebtoons:\n", query)
	for i, w := range items {
		fmt.Fprintf(&b, "%d. %s (genre: %s, popularity: %s)", i+1, w.Title, w.Genre, w.Popularity)
		if w.Summary != "" {
			fmt.Fprintf(&b, " - %s", w.Summary)
		}
		b.WriteString("\n")
	}
	return b.String()
}
