package config

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func parseConfig(t *testing.T, raw string) Config {
	t.Helper()
	var cfg Config
	if err := yaml.Unmarshal(expandEnvVars([]byte(raw)), &cfg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := parseConfig(t, `
http:
  port: 8080
database:
  addrs: ["localhost:6379"]
`)

	if cfg.Retrieval.TopK != 5 {
		t.Errorf("default top_k = %d, want 5", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.SimilarityThreshold != 0.25 {
		t.Errorf("default similarity_threshold = %v, want 0.25", cfg.Retrieval.SimilarityThreshold)
	}
	if cfg.Retrieval.PoorQualitySort != "asc" {
		t.Errorf("default poor_quality_sort = %q, want asc", cfg.Retrieval.PoorQualitySort)
	}
	if cfg.Query.MinLength != 5 || cfg.Query.MaxLength != 500 {
		t.Errorf("default query bounds = %d..%d, want 5..500", cfg.Query.MinLength, cfg.Query.MaxLength)
	}
	if cfg.Embedding.Dimensions != 384 {
		t.Errorf("default dimensions = %d, want 384", cfg.Embedding.Dimensions)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("config with defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"missing addrs", func(c *Config) { c.Database.Addrs = nil }, "database.addrs"},
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"bad sort direction", func(c *Config) { c.Retrieval.PoorQualitySort = "sideways" }, "poor_quality_sort"},
		{"inverted query bounds", func(c *Config) { c.Query.MinLength = 600 }, "min_length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := parseConfig(t, "http:\n  port: 8080\ndatabase:\n  addrs: [\"localhost:6379\"]\n")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TOONREC_TEST_KEY", "secret")

	got := string(expandEnvVars([]byte("key: ${TOONREC_TEST_KEY}\nurl: ${TOONREC_TEST_MISSING:-http://fallback}")))
	if !strings.Contains(got, "key: secret") {
		t.Errorf("env var not expanded: %q", got)
	}
	if !strings.Contains(got, "url: http://fallback") {
		t.Errorf("default not applied: %q", got)
	}
}
