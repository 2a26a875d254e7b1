package admit_request

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/EuricoCruz/token_gate/internal/domain/entity"
	"github.com/EuricoCruz/token_gate/internal/domain/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestExecute_EmptyIdentity_ReturnsErrorWithoutStoreAccess(t *testing.T) {
	// Arrange
	mockStorage := new(MockStorage)
	useCase := NewUseCase(mockStorage)

	// Act
	output, err := useCase.Execute(context.Background(), Input{Identity: ""})

	// Assert
	assert.ErrorIs(t, err, ErrMissingIdentity)
	assert.Nil(t, output)
	mockStorage.AssertNotCalled(t, "Take")
}

func TestExecute_DerivesHashedKeyFromIdentity(t *testing.T) {
	// Arrange
	mockStorage := new(MockStorage)
	useCase := NewUseCase(mockStorage)

	expectedKey := entity.DeriveBucketKey("abc123")
	mockStorage.On("Take", mock.Anything, expectedKey).Return(
		&repository.Decision{Allowed: true, RemainingTokens: 9, Limit: 10}, nil,
	).Once()

	// Act
	output, err := useCase.Execute(context.Background(), Input{Identity: "abc123"})

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, output)
	mockStorage.AssertExpectations(t)
}

func TestExecute_WhenAllowed_MapsDecisionToOutput(t *testing.T) {
	// Arrange
	mockStorage := new(MockStorage)
	useCase := NewUseCase(mockStorage)

	mockStorage.On("Take", mock.Anything, mock.Anything).Return(
		&repository.Decision{Allowed: true, RemainingTokens: 4, Limit: 10}, nil,
	).Once()

	// Act
	output, err := useCase.Execute(context.Background(), Input{Identity: "abc123"})

	// Assert
	assert.NoError(t, err)
	assert.True(t, output.Allowed)
	assert.Equal(t, int64(4), output.RemainingTokens)
	assert.Equal(t, int64(10), output.Limit)
	assert.Equal(t, time.Duration(0), output.RetryAfter)
}

func TestExecute_WhenDenied_MapsRetryAfter(t *testing.T) {
	// Arrange
	mockStorage := new(MockStorage)
	useCase := NewUseCase(mockStorage)

	mockStorage.On("Take", mock.Anything, mock.Anything).Return(
		&repository.Decision{
			Allowed:         false,
			RemainingTokens: 0,
			Limit:           10,
			RetryAfter:      30 * time.Minute,
		}, nil,
	).Once()

	// Act
	output, err := useCase.Execute(context.Background(), Input{Identity: "abc123"})

	// Assert
	assert.NoError(t, err)
	assert.False(t, output.Allowed)
	assert.Equal(t, 30*time.Minute, output.RetryAfter)
}

func TestExecute_StorageError_Propagates(t *testing.T) {
	// Arrange
	mockStorage := new(MockStorage)
	useCase := NewUseCase(mockStorage)

	storeErr := errors.New("redis connection refused")
	mockStorage.On("Take", mock.Anything, mock.Anything).Return(nil, storeErr).Once()

	// Act
	output, err := useCase.Execute(context.Background(), Input{Identity: "abc123"})

	// Assert
	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, output)
}
