package mocks

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"blood-link/internal/domain"
	"blood-link/internal/service/auth"
	"blood-link/internal/service/email"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) Send(ctx context.Context, msg email.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *EmailService) SendDonorMatch(ctx context.Context, donor domain.DonorCandidate, req *domain.BloodRequest) error {
	args := m.Called(ctx, donor, req)
	return args.Error(0)
}

func (m *EmailService) SendRequestDecision(ctx context.Context, req *domain.BloodRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *EmailService) SendRequestAccepted(ctx context.Context, req *domain.BloodRequest, donorName string, donorPhone *string, message string) error {
	args := m.Called(ctx, req, donorName, donorPhone, message)
	return args.Error(0)
}

type StorageService struct {
	mock.Mock
}

func (m *StorageService) Upload(ctx context.Context, folder, fileName string, reader io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, folder, fileName, reader, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *StorageService) Delete(ctx context.Context, publicURL string) error {
	args := m.Called(ctx, publicURL)
	return args.Error(0)
}

type MatchingService struct {
	mock.Mock
}

func (m *MatchingService) Match(ctx context.Context, req *domain.BloodRequest) (*domain.MatchResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MatchResult), args.Error(1)
}

func (m *MatchingService) Plan(ctx context.Context, req *domain.BloodRequest) (*domain.MatchPlan, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MatchPlan), args.Error(1)
}

func (m *MatchingService) Dispatch(ctx context.Context, req *domain.BloodRequest, plan *domain.MatchPlan, created []domain.DonorNotification) *domain.MatchResult {
	args := m.Called(ctx, req, plan, created)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*domain.MatchResult)
}

func (m *MatchingService) Wait() {}

type DonorService struct {
	mock.Mock
}

func (m *DonorService) CreateProfile(ctx context.Context, userID uuid.UUID, input domain.CreateDonorProfileInput) (*domain.DonorProfile, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DonorProfile), args.Error(1)
}

func (m *DonorService) UpdateProfile(ctx context.Context, userID uuid.UUID, input domain.UpdateDonorProfileInput) (*domain.DonorProfile, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DonorProfile), args.Error(1)
}

func (m *DonorService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.DonorProfile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DonorProfile), args.Error(1)
}

func (m *DonorService) UploadPhoto(ctx context.Context, userID uuid.UUID, fileName string, reader io.Reader, size int64, contentType string) (*domain.DonorProfile, error) {
	args := m.Called(ctx, userID, fileName, reader, size, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DonorProfile), args.Error(1)
}

func (m *DonorService) ComputeAutoAvailability(district string, lastDonation *time.Time, now time.Time) bool {
	args := m.Called(district, lastDonation, now)
	return args.Bool(0)
}

func (m *DonorService) RefreshEligibility(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type AuthService struct {
	mock.Mock
}

func (m *AuthService) ValidateAccessToken(tokenString string) (*auth.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

func (m *AuthService) Authenticate(ctx context.Context, tokenString string) (*domain.Identity, error) {
	args := m.Called(ctx, tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

func (m *AuthService) IssueAccessToken(identity domain.Identity, ttl time.Duration) (string, error) {
	args := m.Called(identity, ttl)
	return args.String(0), args.Error(1)
}

type RequestService struct {
	mock.Mock
}

func (m *RequestService) Create(ctx context.Context, input domain.CreateBloodRequestInput) (*domain.BloodRequest, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BloodRequest), args.Error(1)
}

func (m *RequestService) List(ctx context.Context, status string, params domain.PaginationParams) (domain.PaginatedResponse[domain.BloodRequest], error) {
	args := m.Called(ctx, status, params)
	return args.Get(0).(domain.PaginatedResponse[domain.BloodRequest]), args.Error(1)
}

func (m *RequestService) Get(ctx context.Context, id uuid.UUID) (*domain.BloodRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BloodRequest), args.Error(1)
}

func (m *RequestService) SetDecision(ctx context.Context, id uuid.UUID, decision domain.Decision) (*domain.DecisionResult, error) {
	args := m.Called(ctx, id, decision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DecisionResult), args.Error(1)
}

func (m *RequestService) Rematch(ctx context.Context, id uuid.UUID) (*domain.MatchResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MatchResult), args.Error(1)
}

type AcceptanceService struct {
	mock.Mock
}

func (m *AcceptanceService) Accept(ctx context.Context, notificationID uuid.UUID) (*domain.AcceptanceResult, error) {
	args := m.Called(ctx, notificationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AcceptanceResult), args.Error(1)
}

type NotificationService struct {
	mock.Mock
}

func (m *NotificationService) ListDonorNotifications(ctx context.Context, status string, params domain.PaginationParams) (domain.PaginatedResponse[domain.DonorNotification], error) {
	args := m.Called(ctx, status, params)
	return args.Get(0).(domain.PaginatedResponse[domain.DonorNotification]), args.Error(1)
}

func (m *NotificationService) MarkDonorNotificationRead(ctx context.Context, id uuid.UUID) (*domain.DonorNotification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DonorNotification), args.Error(1)
}

func (m *NotificationService) ListRequesterNotifications(ctx context.Context, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.RequesterNotification], error) {
	args := m.Called(ctx, unreadOnly, params)
	return args.Get(0).(domain.PaginatedResponse[domain.RequesterNotification]), args.Error(1)
}

func (m *NotificationService) MarkRequesterNotificationRead(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *NotificationService) MarkAllRequesterNotificationsRead(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *NotificationService) GetRequesterUnreadCount(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
