package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"blood-link/internal/domain"
)

type DonorRepository struct {
	mock.Mock
}

func (m *DonorRepository) Create(ctx context.Context, profile *domain.DonorProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *DonorRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.DonorProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DonorProfile), args.Error(1)
}

func (m *DonorRepository) Update(ctx context.Context, profile *domain.DonorProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *DonorRepository) SetPhotoURL(ctx context.Context, userID uuid.UUID, url string) error {
	args := m.Called(ctx, userID, url)
	return args.Error(0)
}

func (m *DonorRepository) RefreshEligibility(ctx context.Context, cutoff time.Time, regions []string) (int64, error) {
	args := m.Called(ctx, cutoff, regions)
	return args.Get(0).(int64), args.Error(1)
}

func (m *DonorRepository) FindCandidates(ctx context.Context, group domain.BloodGroup) ([]domain.DonorCandidate, error) {
	args := m.Called(ctx, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DonorCandidate), args.Error(1)
}
