package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/toonrec/toonrec/internal/domain"
	"github.com/toonrec/toonrec/internal/usecase/recommend"
)

// apiClient is a thin JSON client over the toonrec HTTP API.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newClient(addr string) *apiClient {
	return &apiClient{
		baseURL: addr,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

type apiError struct {
	Status  int
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server error %d (%s): %s", e.Status, e.Code, e.Message)
}

func (c *apiClient) recommend(ctx context.Context, query string) (recommend.Response, error) {
	var resp recommend.Response
	err := c.post(ctx, "/api/v1/recommend", map[string]string{"query": query}, &resp)
	return resp, err
}

type classifyView struct {
	Intent        string         `json:"intent"`
	Filters       domain.Filters `json:"filters"`
	Quality       string         `json:"quality"`
	SemanticQuery string         `json:"semantic_query"`
	Confidence    float64        `json:"confidence"`
}

func (c *apiClient) classify(ctx context.Context, query string) (classifyView, error) {
	var resp classifyView
	err := c.post(ctx, "/api/v1/classify", map[string]string{"query": query}, &resp)
	return resp, err
}

func (c *apiClient) stats(ctx context.Context, refresh bool) (domain.Stats, error) {
	path := "/api/v1/stats"
	if refresh {
		path += "?refresh=true"
	}
	var resp domain.Stats
	err := c.get(ctx, path, &resp)
	return resp, err
}

func (c *apiClient) load(ctx context.Context, records json.RawMessage) (int, error) {
	var resp struct {
		Loaded int `json:"loaded"`
	}
	err := c.post(ctx, "/api/v1/webtoons", records, &resp)
	return resp.Loaded, err
}

func (c *apiClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *apiClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *apiClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &apiError{Status: resp.StatusCode}
		if json.Unmarshal(body, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = string(body)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
