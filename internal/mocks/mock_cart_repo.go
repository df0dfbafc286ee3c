package mocks

import (
	"context"
	"time"

	"github.com/campscape/registration-engine/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockCartRepo struct {
	mock.Mock
	domain.CartRepository
}

func (m *MockCartRepo) Set(ctx context.Context, sessionToken string, cart domain.Cart, ttl time.Duration) error {
	args := m.Called(ctx, sessionToken, cart, ttl)
	return args.Error(0)
}

func (m *MockCartRepo) Get(ctx context.Context, sessionToken string) (*domain.Cart, error) {
	args := m.Called(ctx, sessionToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *MockCartRepo) Delete(ctx context.Context, sessionToken string) error {
	args := m.Called(ctx, sessionToken)
	return args.Error(0)
}
