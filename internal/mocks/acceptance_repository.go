package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"blood-link/internal/domain"
)

type AcceptanceRepository struct {
	mock.Mock
}

func (m *AcceptanceRepository) Accept(ctx context.Context, a domain.Acceptance) (*domain.BloodRequest, *domain.RequesterNotification, error) {
	args := m.Called(ctx, a)
	var req *domain.BloodRequest
	if v := args.Get(0); v != nil {
		req = v.(*domain.BloodRequest)
	}
	var notif *domain.RequesterNotification
	if v := args.Get(1); v != nil {
		notif = v.(*domain.RequesterNotification)
	}
	return req, notif, args.Error(2)
}
