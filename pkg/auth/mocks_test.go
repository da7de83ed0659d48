package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/venuehub/pkg/ratelimiter"
)

// MockAccountStorage is a mock implementation of AccountStorage.
type MockAccountStorage struct {
	mock.Mock
}

func (m *MockAccountStorage) CreateAccount(ctx context.Context, acc *Account) error {
	args := m.Called(ctx, acc)
	return args.Error(0)
}

func (m *MockAccountStorage) GetAccountByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockAccountStorage) GetAccountByUsername(ctx context.Context, username string) (*Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Account), args.Error(1)
}

func (m *MockAccountStorage) ListAccounts(ctx context.Context) ([]*Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*Account), args.Error(1)
}

func (m *MockAccountStorage) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash []byte) error {
	args := m.Called(ctx, id, hash)
	return args.Error(0)
}

func (m *MockAccountStorage) UpdateRole(ctx context.Context, id uuid.UUID, from, to Role, resetTwoFactor bool) error {
	args := m.Called(ctx, id, from, to, resetTwoFactor)
	return args.Error(0)
}

func (m *MockAccountStorage) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountStorage) BeginTwoFactor(ctx context.Context, id uuid.UUID, sealedSecret string, codeHashes []string) error {
	args := m.Called(ctx, id, sealedSecret, codeHashes)
	return args.Error(0)
}

func (m *MockAccountStorage) EnableTwoFactor(ctx context.Context, id uuid.UUID, sealedSecret string) error {
	args := m.Called(ctx, id, sealedSecret)
	return args.Error(0)
}

func (m *MockAccountStorage) DisableTwoFactor(ctx context.Context, id uuid.UUID, sealedSecret string) error {
	args := m.Called(ctx, id, sealedSecret)
	return args.Error(0)
}

func (m *MockAccountStorage) ConsumeEmergencyCode(ctx context.Context, id uuid.UUID, codeHash string) error {
	args := m.Called(ctx, id, codeHash)
	return args.Error(0)
}

func (m *MockAccountStorage) ResetTwoFactor(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRateLimiter is a mock implementation of ratelimiter.RateLimiter.
type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Allow(ctx context.Context, key string) (*ratelimiter.Result, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ratelimiter.Result), args.Error(1)
}

func (m *MockRateLimiter) AllowN(ctx context.Context, key string, n int) (*ratelimiter.Result, error) {
	args := m.Called(ctx, key, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ratelimiter.Result), args.Error(1)
}
