package admit_request

import (
	"context"

	"github.com/EuricoCruz/token_gate/internal/domain/entity"
	"github.com/EuricoCruz/token_gate/internal/domain/repository"
)

// UseCase implements the business logic for admitting or rejecting a request
type UseCase struct {
	storage repository.Storage
}

// NewUseCase creates a new instance using dependency injection
func NewUseCase(storage repository.Storage) *UseCase {
	return &UseCase{storage: storage}
}

// Execute is the main command that decides whether one request may proceed.
//
// The execution flow:
// 1. Validate input (an empty identity never touches the store)
// 2. Derive the hashed bucket key from the identity
// 3. Delegate the atomic take-one-token decision to the storage layer
// 4. Map the storage decision to the output DTO
//
// A denied decision is a regular outcome; a non-nil error means the store
// itself failed and the caller must apply its store-error policy.
func (uc *UseCase) Execute(ctx context.Context, input Input) (*Output, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	key := entity.DeriveBucketKey(input.Identity)

	decision, err := uc.storage.Take(ctx, key)
	if err != nil {
		return nil, err
	}

	return &Output{
		Allowed:         decision.Allowed,
		RemainingTokens: decision.RemainingTokens,
		Limit:           decision.Limit,
		RetryAfter:      decision.RetryAfter,
	}, nil
}
