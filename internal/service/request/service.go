package request

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"blood-link/internal/domain"
	"blood-link/internal/metrics"
	"blood-link/internal/pkg/validate"
	"blood-link/internal/repository"
	"blood-link/internal/service/email"
	"blood-link/internal/service/matching"
)

var errNotPending = domain.NewConflictError("blood request is no longer pending")

type Service interface {
	Create(ctx context.Context, input domain.CreateBloodRequestInput) (*domain.BloodRequest, error)
	// List returns every request to moderators and admins, and only the
	// caller's own requests to everyone else.
	List(ctx context.Context, status string, params domain.PaginationParams) (domain.PaginatedResponse[domain.BloodRequest], error)
	Get(ctx context.Context, id uuid.UUID) (*domain.BloodRequest, error)
	// SetDecision approves or rejects a PENDING request. An approval commits
	// together with its donor notifications or not at all.
	SetDecision(ctx context.Context, id uuid.UUID, decision domain.Decision) (*domain.DecisionResult, error)
	// Rematch notifies donors that became eligible after an approval.
	Rematch(ctx context.Context, id uuid.UUID) (*domain.MatchResult, error)
}

type service struct {
	requestRepo repository.BloodRequestRepository
	notifRepo   repository.DonorNotificationRepository
	matcher     matching.Service
	emailSvc    email.Service
	logger      *logrus.Logger
}

func NewService(
	requestRepo repository.BloodRequestRepository,
	notifRepo repository.DonorNotificationRepository,
	matcher matching.Service,
	emailSvc email.Service,
	logger *logrus.Logger,
) Service {
	return &service{
		requestRepo: requestRepo,
		notifRepo:   notifRepo,
		matcher:     matcher,
		emailSvc:    emailSvc,
		logger:      logger,
	}
}

func (s *service) Create(ctx context.Context, input domain.CreateBloodRequestInput) (*domain.BloodRequest, error) {
	identity, err := domain.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	input.ContactName = strings.TrimSpace(input.ContactName)
	input.Location = strings.TrimSpace(input.Location)
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	phone, ok := domain.NormalizePhone(input.ContactPhone)
	if !ok {
		return nil, domain.NewValidationError("contact_phone must be 10 to 15 digits, optionally starting with +")
	}

	req := &domain.BloodRequest{
		ID:             uuid.New(),
		RequesterID:    identity.UserID,
		RequesterEmail: identity.Email,
		ContactName:    input.ContactName,
		ContactPhone:   phone,
		ContactEmail:   input.ContactEmail,
		BloodGroup:     input.BloodGroup,
		Urgency:        input.Urgency,
		Location:       input.Location,
		Hospital:       input.Hospital,
		PatientName:    input.PatientName,
		UnitsNeeded:    input.UnitsNeeded,
		Notes:          input.Notes,
		Status:         domain.RequestPending,
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id":   req.ID,
		"requester_id": req.RequesterID,
		"blood_group":  req.BloodGroup,
		"urgency":      req.Urgency,
	}).Info("blood request created")

	return req, nil
}

func (s *service) List(ctx context.Context, status string, params domain.PaginationParams) (domain.PaginatedResponse[domain.BloodRequest], error) {
	identity, err := domain.RequireIdentity(ctx)
	if err != nil {
		return domain.PaginatedResponse[domain.BloodRequest]{}, err
	}

	var filter domain.RequestFilter
	if status = strings.TrimSpace(status); status != "" {
		st := domain.BloodRequestStatus(strings.ToUpper(status))
		if !st.IsValid() {
			return domain.PaginatedResponse[domain.BloodRequest]{}, domain.NewValidationError("unknown status %q", status)
		}
		filter.Status = &st
	}
	if !identity.CanModerate() {
		filter.RequesterID = &identity.UserID
	}

	requests, total, err := s.requestRepo.List(ctx, filter, params)
	if err != nil {
		return domain.PaginatedResponse[domain.BloodRequest]{}, err
	}
	return domain.NewPaginatedResponse(requests, params.Page, params.PageSize, total), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*domain.BloodRequest, error) {
	identity, err := domain.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}

	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != identity.UserID && !identity.CanModerate() {
		return nil, domain.NewForbiddenError("you cannot view this blood request")
	}
	return req, nil
}

func (s *service) SetDecision(ctx context.Context, id uuid.UUID, decision domain.Decision) (*domain.DecisionResult, error) {
	identity, err := domain.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if !identity.CanModerate() {
		return nil, domain.NewForbiddenError("only moderators can decide on blood requests")
	}

	var result *domain.DecisionResult
	switch decision {
	case domain.DecisionApprove:
		result, err = s.approve(ctx, id, identity.UserID)
	case domain.DecisionReject:
		result, err = s.reject(ctx, id, identity.UserID)
	default:
		return nil, domain.NewValidationError("decision must be APPROVED or REJECTED")
	}
	switch {
	case err == nil:
		metrics.RecordDecision(string(decision), "ok")
	case errors.Is(err, domain.ErrConflict):
		metrics.RecordDecision(string(decision), "conflict")
		return nil, err
	default:
		metrics.RecordDecision(string(decision), "error")
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id":   id,
		"moderator_id": identity.UserID,
		"decision":     decision,
	}).Info("blood request decided")

	if err := s.emailSvc.SendRequestDecision(ctx, result.Request); err != nil {
		s.logger.WithError(err).WithField("request_id", id).Warn("failed to email requester about decision")
	}
	return result, nil
}

func (s *service) approve(ctx context.Context, id, moderatorID uuid.UUID) (*domain.DecisionResult, error) {
	current, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.RequestPending {
		return nil, errNotPending
	}

	plan, err := s.matcher.Plan(ctx, current)
	if err != nil {
		return nil, err
	}

	req, created, moved, err := s.requestRepo.Approve(ctx, id, moderatorID, plan.DonorIDs())
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, errNotPending
	}

	return &domain.DecisionResult{
		Request: req,
		Match:   s.matcher.Dispatch(ctx, req, plan, created),
	}, nil
}

func (s *service) reject(ctx context.Context, id, moderatorID uuid.UUID) (*domain.DecisionResult, error) {
	req, moved, err := s.requestRepo.Decide(ctx, id, domain.RequestRejected, moderatorID)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, errNotPending
	}

	log := s.logger.WithField("request_id", id)
	closed, err := s.notifRepo.CloseOpenByRequest(ctx, id)
	if err != nil {
		log.WithError(err).Error("failed to close donor notifications after rejection")
	} else if closed > 0 {
		log.WithField("closed", closed).Info("closed open donor notifications")
	}
	return &domain.DecisionResult{Request: req}, nil
}

func (s *service) Rematch(ctx context.Context, id uuid.UUID) (*domain.MatchResult, error) {
	identity, err := domain.RequireIdentity(ctx)
	if err != nil {
		return nil, err
	}
	if !identity.CanModerate() {
		return nil, domain.NewForbiddenError("only moderators can re-run donor matching")
	}

	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != domain.RequestApproved {
		return nil, domain.NewConflictError("only approved requests can be matched, this one is %s", req.Status)
	}

	res, err := s.matcher.Match(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"request_id":   id,
		"moderator_id": identity.UserID,
		"notified":     res.Notified,
	}).Info("donor matching re-run")
	return res, nil
}
