package domain

import "errors"

var (
	// ErrInvalidQuery signals a query rejected by validation.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrQueryTooShort signals a query below the minimum length.
	ErrQueryTooShort = errors.New("query too short")
	// ErrQueryTooLong signals a query above the maximum length.
	ErrQueryTooLong = errors.New("query too long")
	// ErrQueryNoContent signals a query with no usable content.
	ErrQueryNoContent = errors.New("query has no usable content")

	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrRateLimited signals a rate limit from an external collaborator.
	ErrRateLimited = errors.New("rate limited")
	// ErrGeneration signals a text generation failure.
	ErrGeneration = errors.New("text generation failed")
	// ErrStoreUnavailable signals that the document store is unreachable.
	ErrStoreUnavailable = errors.New("store unavailable")
)
