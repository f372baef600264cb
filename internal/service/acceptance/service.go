package acceptance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"blood-link/internal/domain"
	"blood-link/internal/metrics"
	"blood-link/internal/repository"
	"blood-link/internal/service/email"
)

var errRequestRejected = domain.NewConflictError("blood request was rejected by a moderator")

type Service interface {
	// Accept lets the donor in ctx take on the request behind a notification.
	// At most one donor ever succeeds per request; the rest get
	// domain.ErrAlreadyAccepted.
	Accept(ctx context.Context, notificationID uuid.UUID) (*domain.AcceptanceResult, error)
}

type service struct {
	acceptRepo  repository.AcceptanceRepository
	notifRepo   repository.DonorNotificationRepository
	donorRepo   repository.DonorRepository
	requestRepo repository.BloodRequestRepository
	emailSvc    email.Service
	logger      *logrus.Logger
	now         func() time.Time
}

func NewService(
	acceptRepo repository.AcceptanceRepository,
	notifRepo repository.DonorNotificationRepository,
	donorRepo repository.DonorRepository,
	requestRepo repository.BloodRequestRepository,
	emailSvc email.Service,
	logger *logrus.Logger,
) Service {
	return &service{
		acceptRepo:  acceptRepo,
		notifRepo:   notifRepo,
		donorRepo:   donorRepo,
		requestRepo: requestRepo,
		emailSvc:    emailSvc,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *service) Accept(ctx context.Context, notificationID uuid.UUID) (*domain.AcceptanceResult, error) {
	result, err := s.accept(ctx, notificationID)
	switch {
	case err == nil:
		metrics.RecordAcceptance("accepted")
	case errors.Is(err, domain.ErrAlreadyAccepted):
		metrics.RecordAcceptance("already_accepted")
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrConflict):
		metrics.RecordAcceptance("rejected")
	default:
		metrics.RecordAcceptance("error")
	}
	return result, err
}

func (s *service) accept(ctx context.Context, notificationID uuid.UUID) (*domain.AcceptanceResult, error) {
	identity, err := domain.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	notif, err := s.notifRepo.GetByID(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if notif.DonorID != identity.UserID {
		return nil, domain.NewNotFoundError("notification not found")
	}

	profile, err := s.donorRepo.GetByUserID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewValidationError("create a donor profile before accepting requests")
		}
		return nil, err
	}
	if !profile.IsAvailable {
		return nil, domain.NewValidationError("you are not currently available to donate")
	}

	req, err := s.requestRepo.GetByID(ctx, notif.BloodRequestID)
	if err != nil {
		return nil, err
	}
	if notif.Status == domain.NotifClosed || req.AcceptedDonorID != nil {
		if req.Status == domain.RequestRejected {
			return nil, errRequestRejected
		}
		return nil, domain.ErrAlreadyAccepted
	}
	if req.Status != domain.RequestApproved {
		return nil, domain.NewValidationError("blood request is not open for donors")
	}

	donorName := identity.FullName
	if donorName == "" {
		donorName = identity.Email
	}

	acceptance := domain.Acceptance{
		RequestID:      req.ID,
		NotificationID: notif.ID,
		DonorID:        identity.UserID,
		RequesterID:    req.RequesterID,
		Message:        acceptanceMessage(donorName, req, profile.Phone),
		AcceptedAt:     s.now().UTC(),
	}

	fulfilled, requesterNotif, err := s.acceptRepo.Accept(ctx, acceptance)
	if err != nil {
		return nil, err
	}

	log := s.logger.WithFields(logrus.Fields{
		"request_id":      fulfilled.ID,
		"donor_id":        identity.UserID,
		"notification_id": notif.ID,
	})
	log.Info("blood request accepted by donor")

	if err := s.emailSvc.SendRequestAccepted(ctx, fulfilled, donorName, profile.Phone, acceptance.Message); err != nil {
		log.WithError(err).Warn("failed to email requester about acceptance")
	}

	return &domain.AcceptanceResult{
		Request:               fulfilled,
		RequesterNotification: requesterNotif,
	}, nil
}

func acceptanceMessage(donorName string, req *domain.BloodRequest, phone *string) string {
	msg := fmt.Sprintf("%s accepted your %s blood request at %s.", donorName, req.BloodGroup.Label(), req.Location)
	if phone != nil {
		msg += fmt.Sprintf(" Contact them at %s.", *phone)
	}
	return msg
}
