package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"blood-link/internal/domain"
)

type BloodRequestRepository struct {
	mock.Mock
}

func (m *BloodRequestRepository) Create(ctx context.Context, req *domain.BloodRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *BloodRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.BloodRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BloodRequest), args.Error(1)
}

func (m *BloodRequestRepository) List(ctx context.Context, filter domain.RequestFilter, params domain.PaginationParams) ([]domain.BloodRequest, int64, error) {
	args := m.Called(ctx, filter, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.BloodRequest), args.Get(1).(int64), args.Error(2)
}

func (m *BloodRequestRepository) Decide(ctx context.Context, id uuid.UUID, status domain.BloodRequestStatus, moderatorID uuid.UUID) (*domain.BloodRequest, bool, error) {
	args := m.Called(ctx, id, status, moderatorID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.BloodRequest), args.Bool(1), args.Error(2)
}

func (m *BloodRequestRepository) Approve(ctx context.Context, id, moderatorID uuid.UUID, donorIDs []uuid.UUID) (*domain.BloodRequest, []domain.DonorNotification, bool, error) {
	args := m.Called(ctx, id, moderatorID, donorIDs)
	var req *domain.BloodRequest
	if v := args.Get(0); v != nil {
		req = v.(*domain.BloodRequest)
	}
	var created []domain.DonorNotification
	if v := args.Get(1); v != nil {
		created = v.([]domain.DonorNotification)
	}
	return req, created, args.Bool(2), args.Error(3)
}

func (m *BloodRequestRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.BloodRequest, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BloodRequest), args.Error(1)
}
