// Package ports defines interfaces for external dependencies.
// Clean Architecture: These are the boundaries - usecases depend on these abstractions,
// not concrete implementations. Adapters implement these interfaces.
// This follows Dependency Inversion Principle (DIP) strictly.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/asila/asila/internal/domain/entities"
)

// ErrStoreUnavailable reports that a backing store could not be reached.
// Callers decide fail-open behavior explicitly instead of the adapter
// swallowing the failure.
var ErrStoreUnavailable = errors.New("backing store unavailable")

// RateLimiter bounds message frequency per subject.
// Subject keys carry their class prefix ("user:" or "admin:"); counters
// for different classes never interact.
type RateLimiter interface {
	// Allow increments the counter for subjectKey and reports whether the
	// request is within limit. The increment and the first-hit expiry must
	// be atomic against the store. Returns ErrStoreUnavailable (wrapped)
	// when the counter store cannot be reached.
	Allow(ctx context.Context, subjectKey string, limit int, window time.Duration) (bool, error)
}

// ResponseCache is a best-effort get/set of previously computed answers.
type ResponseCache interface {
	// Get returns the cached text for key. ok is false on a miss.
	Get(ctx context.Context, key string) (text string, ok bool, err error)

	// Set stores text under key with the given TTL. Concurrent writers to
	// the same key are last-write-wins.
	Set(ctx context.Context, key string, text string, ttl time.Duration) error
}

// Retriever returns verified content chunks scoped to a tenant.
type Retriever interface {
	// Retrieve ranks chunks by ascending embedding distance and returns at
	// most limit of them. Only chunks from approved, still-valid notices of
	// the active tenant (and matching location, when given) are eligible.
	// An empty result is not an error.
	Retrieve(ctx context.Context, tenantID string, queryEmbedding []float32, location string, limit int) ([]entities.RetrievedChunk, error)
}

// EmbeddingService generates vector embeddings for text.
// Interface Segregation: Only embedding responsibility, nothing else.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// LLMService generates a natural-language answer from retrieved chunks.
// The pipeline treats the output as opaque input to the safety filter.
type LLMService interface {
	Generate(ctx context.Context, chunks []entities.RetrievedChunk, query string) (string, error)
}

// QueryLog receives per-message analytics records. Both methods are
// best-effort: the pipeline never blocks on them or reads them back.
type QueryLog interface {
	LogQuery(ctx context.Context, rec entities.QueryRecord) error
	LogUnanswered(ctx context.Context, rec entities.QueryRecord, reason string) error
}
