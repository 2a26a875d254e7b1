package admit_request

import (
	"context"

	"github.com/EuricoCruz/token_gate/internal/domain/entity"
	"github.com/EuricoCruz/token_gate/internal/domain/repository"
	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of the Storage interface for testing purposes
type MockStorage struct {
	mock.Mock
}

// Take mocks the Take method from Storage interface
func (m *MockStorage) Take(ctx context.Context, key entity.BucketKey) (*repository.Decision, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Decision), args.Error(1)
}

// Close mocks the Close method from Storage interface
func (m *MockStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}
