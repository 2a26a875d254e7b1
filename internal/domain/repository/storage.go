package repository

import (
	"context"
	"time"

	"github.com/EuricoCruz/token_gate/internal/domain/entity"
)

// Storage defines the contract for the shared limiter state store.
// Use cases depend on this abstraction rather than on a concrete client,
// following the Dependency Inversion Principle, so the backend can be
// swapped or mocked without touching business rules.
type Storage interface {
	// Take settles one admission decision for the bucket behind key: it reads
	// the current state, applies the refill policy, and either persists the
	// state with one token consumed or leaves the store untouched when the
	// bucket is empty. Concurrent calls on the same key never double-spend —
	// a caller that loses the race recomputes against the committed state.
	// A denied decision is a legitimate outcome, not an error; a non-nil error
	// reports store connectivity or protocol failure only.
	Take(ctx context.Context, key entity.BucketKey) (*Decision, error)

	// Close closes any connections or resources used by the storage implementation.
	// Should be called during application shutdown for proper cleanup.
	Close() error
}

// Decision contains the outcome of one admission attempt
type Decision struct {
	Allowed         bool          // Whether the request is allowed to proceed
	RemainingTokens int64         // Tokens left in the bucket after this decision
	Limit           int64         // The configured bucket capacity
	RetryAfter      time.Duration // Time until a refill grants a token; zero when allowed
}
