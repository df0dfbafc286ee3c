package mocks

import (
	"context"

	"github.com/campscape/registration-engine/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockOrderRepo struct {
	mock.Mock
	domain.OrderRepository
}

func (m *MockOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepo) GetById(ctx context.Context, id int) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockOrderRepo) GetSummariesByParentId(
	ctx context.Context,
	parentID int,
	pagination domain.Pagination,
) ([]domain.OrderSummary, *domain.Metadata, error) {
	args := m.Called(ctx, parentID, pagination)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.OrderSummary), args.Get(1).(*domain.Metadata), args.Error(2)
}

func (m *MockOrderRepo) UpdateStatus(ctx context.Context, id int, from, to domain.OrderStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}
