package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"github.com/toonrec/toonrec/internal/domain"
	"github.com/toonrec/toonrec/internal/metrics"
)

// Generator produces text via the chat completions endpoint. Transient
// provider failures (429, 5xx) are retried with exponential backoff;
// client errors fail immediately.
type Generator struct {
	client     *openai.Client
	model      string
	purpose    string
	maxRetries uint64
}

// GeneratorConfig holds the text generation settings.
type GeneratorConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	// Purpose labels this generator's metrics (extraction, explanation).
	Purpose    string
	MaxRetries int
}

// NewGenerator creates an OpenAI-compatible text generator.
func NewGenerator(cfg GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	purpose := cfg.Purpose
	if purpose == "" {
		purpose = "generation"
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Generator{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      cfg.Model,
		purpose:    purpose,
		maxRetries: uint64(maxRetries),
	}
}

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	var resp openai.ChatCompletionResponse

	operation := func() error {
		start := time.Now()
		r, err := g.client.CreateChatCompletion(ctx, req)
		duration := time.Since(start)

		if err != nil {
			metrics.LLMRequestsTotal.WithLabelValues(g.model, g.purpose, "error").Inc()
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}

		metrics.LLMRequestsTotal.WithLabelValues(g.model, g.purpose, "success").Inc()
		metrics.LLMRequestDuration.WithLabelValues(g.model, g.purpose).Observe(duration.Seconds())
		if r.Usage.TotalTokens > 0 {
			metrics.LLMTokensTotal.WithLabelValues(g.model, "prompt").Add(float64(r.Usage.PromptTokens))
			metrics.LLMTokensTotal.WithLabelValues(g.model, "completion").Add(float64(r.Usage.CompletionTokens))
		}

		resp = r
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), g.maxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return "", parseGenerationError(err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGeneration)
	}
	return resp.Choices[0].Message.Content, nil
}

// retryable reports whether the provider error is worth another attempt.
func retryable(err error) bool {
	code := statusCode(err)
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError || code == 0
}

func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func parseGenerationError(err error) error {
	if statusCode(err) == http.StatusTooManyRequests {
		return fmt.Errorf("completion rejected: %w: %w", domain.ErrRateLimited, err)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("completion API error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, domain.ErrGeneration)
	}
	return fmt.Errorf("completion request failed: %w: %w", domain.ErrGeneration, err)
}
