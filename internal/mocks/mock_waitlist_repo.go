package mocks

import (
	"context"

	"github.com/campscape/registration-engine/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockWaitlistRepo struct {
	mock.Mock
	domain.WaitlistRepository
}

func (m *MockWaitlistRepo) Insert(ctx context.Context, entry *domain.WaitlistEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockWaitlistRepo) GetById(ctx context.Context, id string) (*domain.WaitlistEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.WaitlistEntry), args.Error(1)
}

func (m *MockWaitlistRepo) UpdateStatus(ctx context.Context, id string, from, to domain.WaitlistStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockWaitlistRepo) ListBySession(
	ctx context.Context,
	sessionID int,
	status domain.WaitlistStatus,
) ([]domain.WaitlistEntry, error) {
	args := m.Called(ctx, sessionID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.WaitlistEntry), args.Error(1)
}

func (m *MockWaitlistRepo) ListByParent(
	ctx context.Context,
	parentID int,
	pagination domain.Pagination,
) ([]domain.WaitlistEntry, *domain.Metadata, error) {
	args := m.Called(ctx, parentID, pagination)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.WaitlistEntry), args.Get(1).(*domain.Metadata), args.Error(2)
}
