// Package webtoon is the Redis-backed catalog store. Webtoons live in
// hashes under a common key prefix with their embedding stored as a raw
// FLOAT32 blob, indexed by RediSearch for tag, numeric and KNN queries.
package webtoon

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"
)

// Config holds connection and schema parameters for the catalog store.
type Config struct {
	Addrs     []string
	Username  string
	Password  string
	DB        int
	KeyPrefix string
	IndexName string
	VectorDim int
	// ScanLimit caps full-catalog projections (stats, manual scoring).
	ScanLimit int
}

// Repository implements catalog access over rueidis for Redis 8+.
type Repository struct {
	client    rueidis.Client
	prefix    string
	index     string
	dim       int
	scanLimit int
}

// New connects to Redis and returns the catalog repository.
func New(cfg Config) (*Repository, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}
	if cfg.VectorDim <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		DisableCache: true,
		AlwaysRESP2:  true, // FT.SEARCH result parsing expects RESP2 array format
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	scanLimit := cfg.ScanLimit
	if scanLimit <= 0 {
		scanLimit = 10000
	}

	return &Repository{
		client:    client,
		prefix:    cfg.KeyPrefix,
		index:     cfg.IndexName,
		dim:       cfg.VectorDim,
		scanLimit: scanLimit,
	}, nil
}

// Ping checks connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	cmd := r.client.B().Ping().Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close shuts down the client.
func (r *Repository) Close() {
	r.client.Close()
}

// WaitForReady polls Ping until the store responds or timeout expires.
func (r *Repository) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			if err := r.Ping(ctx); err == nil {
				return nil
			}
		}
	}
}

func (r *Repository) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return r.client.Do(ctx, cmd)
}

func (r *Repository) b() rueidis.Builder {
	return r.client.B()
}

// isRedisErr checks if err is a Redis server error containing substr
// (case-insensitive).
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}
