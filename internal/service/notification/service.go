package notification

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"blood-link/internal/domain"
	"blood-link/internal/repository"
)

type Service interface {
	ListDonorNotifications(ctx context.Context, status string, params domain.PaginationParams) (domain.PaginatedResponse[domain.DonorNotification], error)
	MarkDonorNotificationRead(ctx context.Context, id uuid.UUID) (*domain.DonorNotification, error)

	ListRequesterNotifications(ctx context.Context, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.RequesterNotification], error)
	MarkRequesterNotificationRead(ctx context.Context, id uuid.UUID) error
	MarkAllRequesterNotificationsRead(ctx context.Context) error
	GetRequesterUnreadCount(ctx context.Context) (int64, error)
}

type service struct {
	donorNotifRepo     repository.DonorNotificationRepository
	requesterNotifRepo repository.RequesterNotificationRepository
	requestRepo        repository.BloodRequestRepository
}

func NewService(
	donorNotifRepo repository.DonorNotificationRepository,
	requesterNotifRepo repository.RequesterNotificationRepository,
	requestRepo repository.BloodRequestRepository,
) Service {
	return &service{
		donorNotifRepo:     donorNotifRepo,
		requesterNotifRepo: requesterNotifRepo,
		requestRepo:        requestRepo,
	}
}

func (s *service) ListDonorNotifications(ctx context.Context, status string, params domain.PaginationParams) (domain.PaginatedResponse[domain.DonorNotification], error) {
	identity, err := domain.RequireIdentity(ctx)
	if err != nil {
		return domain.PaginatedResponse[domain.DonorNotification]{}, err
	}

	var filter *domain.DonorNotificationStatus
	if status = strings.TrimSpace(status); status != "" {
		st := domain.DonorNotificationStatus(strings.ToUpper(status))
		if !st.IsValid() {
			return domain.PaginatedResponse[domain.DonorNotification]{}, domain.NewValidationError("unknown notification status %q", status)
		}
		filter = &st
	}

	notifications, total, err := s.donorNotifRepo.ListByDonor(ctx, identity.UserID, filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.DonorNotification]{}, err
	}

	if err := s.attachRequests(ctx, notifications); err != nil {
		return domain.PaginatedResponse[domain.DonorNotification]{}, err
	}

	return domain.NewPaginatedResponse(notifications, params.Page, params.PageSize, total), nil
}

// attachRequests loads every referenced request in one query. A request that
// no longer exists leaves Request nil.
func (s *service) attachRequests(ctx context.Context, notifications []domain.DonorNotification) error {
	if len(notifications) == 0 {
		return nil
	}

	seen := make(map[uuid.UUID]struct{}, len(notifications))
	ids := make([]uuid.UUID, 0, len(notifications))
	for _, n := range notifications {
		if _, ok := seen[n.BloodRequestID]; !ok {
			seen[n.BloodRequestID] = struct{}{}
			ids = append(ids, n.BloodRequestID)
		}
	}

	requests, err := s.requestRepo.ListByIDs(ctx, ids)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*domain.BloodRequest, len(requests))
	for i := range requests {
		byID[requests[i].ID] = &requests[i]
	}
	for i := range notifications {
		notifications[i].Request = byID[notifications[i].BloodRequestID]
	}
	return nil
}

func (s *service) MarkDonorNotificationRead(ctx context.Context, id uuid.UUID) (*domain.DonorNotification, error) {
	identity, err := domain.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	notif, err := s.donorNotifRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notif.DonorID != identity.UserID {
		return nil, domain.NewNotFoundError("notification not found")
	}

	if err := s.donorNotifRepo.MarkAsRead(ctx, id, identity.UserID); err != nil {
		return nil, err
	}
	return s.donorNotifRepo.GetByID(ctx, id)
}

func (s *service) ListRequesterNotifications(ctx context.Context, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.RequesterNotification], error) {
	identity, err := domain.RequireIdentity(ctx)
	if err != nil {
		return domain.PaginatedResponse[domain.RequesterNotification]{}, err
	}

	notifications, total, err := s.requesterNotifRepo.ListByRequester(ctx, identity.UserID, unreadOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.RequesterNotification]{}, err
	}
	return domain.NewPaginatedResponse(notifications, params.Page, params.PageSize, total), nil
}

func (s *service) MarkRequesterNotificationRead(ctx context.Context, id uuid.UUID) error {
	identity, err := domain.RequireIdentity(ctx)
	if err != nil {
		return err
	}

	notif, err := s.requesterNotifRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if notif.RequesterID != identity.UserID {
		return domain.NewNotFoundError("notification not found")
	}
	return s.requesterNotifRepo.MarkAsRead(ctx, id, identity.UserID)
}

func (s *service) MarkAllRequesterNotificationsRead(ctx context.Context) error {
	identity, err := domain.RequireIdentity(ctx)
	if err != nil {
		return err
	}
	return s.requesterNotifRepo.MarkAllAsRead(ctx, identity.UserID)
}

func (s *service) GetRequesterUnreadCount(ctx context.Context) (int64, error) {
	identity, err := domain.RequireIdentity(ctx)
	if err != nil {
		return 0, err
	}
	return s.requesterNotifRepo.CountUnread(ctx, identity.UserID)
}
