package webtoon

import (
	"context"
	"fmt"
	"strconv"
)

// HNSW construction parameters. The catalog is small enough that the
// defaults would also work; these match the dataset the index was tuned on.
const (
	hnswM           = 16
	hnswEFConstruct = 200
)

// EnsureIndex creates the catalog search index if it does not exist yet.
func (r *Repository) EnsureIndex(ctx context.Context) error {
	args := []string{
		r.index,
		"ON", "HASH",
		"PREFIX", "1", r.prefix,
		"SCHEMA",
		fieldGenre, "TAG",
		fieldPopularity, "TAG",
		fieldQuality, "TAG",
		fieldLikes, "NUMERIC", "SORTABLE",
		fieldViews, "NUMERIC",
		fieldEmbedding, "VECTOR", "HNSW", "10",
		"TYPE", "FLOAT32",
		"DIM", strconv.Itoa(r.dim),
		"DISTANCE_METRIC", "COSINE",
		"M", strconv.Itoa(hnswM),
		"EF_CONSTRUCTION", strconv.Itoa(hnswEFConstruct),
	}

	cmd := r.b().Arbitrary("FT.CREATE").Args(args...).Build()
	if err := r.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "index already exists") {
			return nil
		}
		return fmt.Errorf("create index %s: %w", r.index, err)
	}
	return nil
}

// DropIndex removes the catalog index, keeping the documents.
func (r *Repository) DropIndex(ctx context.Context) error {
	cmd := r.b().Arbitrary("FT.DROPINDEX").Args(r.index).Build()
	if err := r.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown index name") {
			return nil
		}
		return fmt.Errorf("drop index %s: %w", r.index, err)
	}
	return nil
}
