package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"blood-link/internal/domain"
)

type DonorNotificationRepository struct {
	mock.Mock
}

func (m *DonorNotificationRepository) CreateForRequest(ctx context.Context, requestID uuid.UUID, donorIDs []uuid.UUID) ([]domain.DonorNotification, error) {
	args := m.Called(ctx, requestID, donorIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DonorNotification), args.Error(1)
}

func (m *DonorNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.DonorNotification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DonorNotification), args.Error(1)
}

func (m *DonorNotificationRepository) ListByDonor(ctx context.Context, donorID uuid.UUID, status *domain.DonorNotificationStatus, params domain.PaginationParams) ([]domain.DonorNotification, int64, error) {
	args := m.Called(ctx, donorID, status, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.DonorNotification), args.Get(1).(int64), args.Error(2)
}

func (m *DonorNotificationRepository) MarkAsRead(ctx context.Context, id, donorID uuid.UUID) error {
	args := m.Called(ctx, id, donorID)
	return args.Error(0)
}

func (m *DonorNotificationRepository) CloseOpenByRequest(ctx context.Context, requestID uuid.UUID) (int64, error) {
	args := m.Called(ctx, requestID)
	return args.Get(0).(int64), args.Error(1)
}

type RequesterNotificationRepository struct {
	mock.Mock
}

func (m *RequesterNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.RequesterNotification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RequesterNotification), args.Error(1)
}

func (m *RequesterNotificationRepository) ListByRequester(ctx context.Context, requesterID uuid.UUID, unreadOnly bool, params domain.PaginationParams) ([]domain.RequesterNotification, int64, error) {
	args := m.Called(ctx, requesterID, unreadOnly, params)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]domain.RequesterNotification), args.Get(1).(int64), args.Error(2)
}

func (m *RequesterNotificationRepository) MarkAsRead(ctx context.Context, id, requesterID uuid.UUID) error {
	args := m.Called(ctx, id, requesterID)
	return args.Error(0)
}

func (m *RequesterNotificationRepository) MarkAllAsRead(ctx context.Context, requesterID uuid.UUID) error {
	args := m.Called(ctx, requesterID)
	return args.Error(0)
}

func (m *RequesterNotificationRepository) CountUnread(ctx context.Context, requesterID uuid.UUID) (int64, error) {
	args := m.Called(ctx, requesterID)
	return args.Get(0).(int64), args.Error(1)
}
