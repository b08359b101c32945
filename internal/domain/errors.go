package domain

import "errors"

var (
	// ErrPreferencesNotFound signals a user without a preference record.
	ErrPreferencesNotFound = errors.New("user preferences not found")
	// ErrEmptyQuery signals a blank search query.
	ErrEmptyQuery = errors.New("query text cannot be empty")
	// ErrEmbeddingUpstream signals an embedding provider failure.
	ErrEmbeddingUpstream = errors.New("embedding provider failure")
	// ErrVectorSearchUpstream signals an unavailable vector search service.
	ErrVectorSearchUpstream = errors.New("vector search unavailable")
	// ErrCollectionMissing signals a resumed ingestion run against an absent collection.
	ErrCollectionMissing = errors.New("vector collection missing")
)
