package request_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blood-link/internal/domain"
	"blood-link/internal/mocks"
	"blood-link/internal/pkg/dedupe"
	"blood-link/internal/service/matching"
	"blood-link/internal/service/request"
)

type fixture struct {
	requestRepo *mocks.BloodRequestRepository
	notifRepo   *mocks.DonorNotificationRepository
	matcher     *mocks.MatchingService
	emailSvc    *mocks.EmailService
	svc         request.Service
}

func newFixture() *fixture {
	logger, _ := test.NewNullLogger()
	f := &fixture{
		requestRepo: new(mocks.BloodRequestRepository),
		notifRepo:   new(mocks.DonorNotificationRepository),
		matcher:     new(mocks.MatchingService),
		emailSvc:    new(mocks.EmailService),
	}
	f.svc = request.NewService(f.requestRepo, f.notifRepo, f.matcher, f.emailSvc, logger)
	return f
}

func asUser(role domain.UserRole) (context.Context, *domain.Identity) {
	id := &domain.Identity{
		UserID:     uuid.New(),
		Email:      "someone@campus.edu",
		FullName:   "Some One",
		Role:       role,
		IsVerified: true,
	}
	return domain.WithIdentity(context.Background(), id), id
}

func validInput() domain.CreateBloodRequestInput {
	return domain.CreateBloodRequestInput{
		ContactName:  "Rahim Uddin",
		ContactPhone: "0171-234 5678",
		BloodGroup:   domain.BloodONegative,
		Urgency:      domain.UrgencyUrgent,
		Location:     "Central Hospital",
	}
}

func TestRequestService_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		ctx, id := asUser(domain.RoleUser)

		f.requestRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.BloodRequest) bool {
			return r.RequesterID == id.UserID &&
				r.RequesterEmail == id.Email &&
				r.ContactPhone == "01712345678" &&
				r.Status == domain.RequestPending &&
				r.AcceptedDonorID == nil
		})).Return(nil).Once()

		req, err := f.svc.Create(ctx, validInput())

		require.NoError(t, err)
		assert.Equal(t, domain.RequestPending, req.Status)
		assert.Equal(t, "01712345678", req.ContactPhone)
		f.requestRepo.AssertExpectations(t)
	})

	t.Run("Invalid phone", func(t *testing.T) {
		f := newFixture()
		ctx, _ := asUser(domain.RoleUser)
		input := validInput()
		input.ContactPhone = "12345"

		_, err := f.svc.Create(ctx, input)

		assert.True(t, errors.Is(err, domain.ErrValidation))
		f.requestRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Invalid blood group", func(t *testing.T) {
		f := newFixture()
		ctx, _ := asUser(domain.RoleUser)
		input := validInput()
		input.BloodGroup = "C_POSITIVE"

		_, err := f.svc.Create(ctx, input)

		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("Missing location", func(t *testing.T) {
		f := newFixture()
		ctx, _ := asUser(domain.RoleUser)
		input := validInput()
		input.Location = "   "

		_, err := f.svc.Create(ctx, input)

		assert.True(t, errors.Is(err, domain.ErrValidation))
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Create(context.Background(), validInput())

		assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	})
}

func TestRequestService_List(t *testing.T) {
	params := domain.PaginationParams{Page: 1, PageSize: 20}

	t.Run("Regular user sees only own requests", func(t *testing.T) {
		f := newFixture()
		ctx, id := asUser(domain.RoleUser)

		f.requestRepo.On("List", ctx, mock.MatchedBy(func(fl domain.RequestFilter) bool {
			return fl.RequesterID != nil && *fl.RequesterID == id.UserID && fl.Status == nil
		}), params).Return([]domain.BloodRequest{{ID: uuid.New(), RequesterID: id.UserID}}, int64(1), nil).Once()

		res, err := f.svc.List(ctx, "", params)

		require.NoError(t, err)
		assert.Len(t, res.Data, 1)
		assert.Equal(t, int64(1), res.TotalItems)
		f.requestRepo.AssertExpectations(t)
	})

	t.Run("Moderator filters by status", func(t *testing.T) {
		f := newFixture()
		ctx, _ := asUser(domain.RoleModerator)

		f.requestRepo.On("List", ctx, mock.MatchedBy(func(fl domain.RequestFilter) bool {
			return fl.RequesterID == nil && fl.Status != nil && *fl.Status == domain.RequestApproved
		}), params).Return([]domain.BloodRequest{}, int64(0), nil).Once()

		_, err := f.svc.List(ctx, "approved", params)

		require.NoError(t, err)
		f.requestRepo.AssertExpectations(t)
	})

	t.Run("Unknown status", func(t *testing.T) {
		f := newFixture()
		ctx, _ := asUser(domain.RoleAdmin)

		_, err := f.svc.List(ctx, "LOST", params)

		assert.True(t, errors.Is(err, domain.ErrValidation))
		f.requestRepo.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRequestService_Get(t *testing.T) {
	owner := uuid.New()
	reqID := uuid.New()
	stored := &domain.BloodRequest{ID: reqID, RequesterID: owner}

	t.Run("Other user is forbidden", func(t *testing.T) {
		f := newFixture()
		ctx, _ := asUser(domain.RoleUser)
		f.requestRepo.On("GetByID", ctx, reqID).Return(stored, nil).Once()

		_, err := f.svc.Get(ctx, reqID)

		assert.True(t, errors.Is(err, domain.ErrForbidden))
	})

	t.Run("Moderator can read", func(t *testing.T) {
		f := newFixture()
		ctx, _ := asUser(domain.RoleModerator)
		f.requestRepo.On("GetByID", ctx, reqID).Return(stored, nil).Once()

		got, err := f.svc.Get(ctx, reqID)

		require.NoError(t, err)
		assert.Equal(t, reqID, got.ID)
	})
}

func TestRequestService_SetDecision(t *testing.T) {
	reqID := uuid.New()
	pending := &domain.BloodRequest{ID: reqID, BloodGroup: domain.BloodONegative, Status: domain.RequestPending}

	t.Run("Approve commits notifications with the approval", func(t *testing.T) {
		f := newFixture()
		ctx, mod := asUser(domain.RoleModerator)
		approved := &domain.BloodRequest{ID: reqID, Status: domain.RequestApproved, ModeratorID: &mod.UserID}
		plan := &domain.MatchPlan{Candidates: []domain.DonorCandidate{
			{DonorProfile: domain.DonorProfile{UserID: uuid.New()}},
			{DonorProfile: domain.DonorProfile{UserID: uuid.New()}},
		}}
		created := []domain.DonorNotification{{ID: uuid.New()}, {ID: uuid.New()}}
		match := &domain.MatchResult{RequestID: reqID, Candidates: 2, Notified: 2}

		f.requestRepo.On("GetByID", ctx, reqID).Return(pending, nil).Once()
		f.matcher.On("Plan", ctx, pending).Return(plan, nil).Once()
		f.requestRepo.On("Approve", ctx, reqID, mod.UserID, plan.DonorIDs()).Return(approved, created, true, nil).Once()
		f.matcher.On("Dispatch", ctx, approved, plan, created).Return(match).Once()
		f.emailSvc.On("SendRequestDecision", ctx, approved).Return(nil).Once()

		res, err := f.svc.SetDecision(ctx, reqID, domain.DecisionApprove)

		require.NoError(t, err)
		assert.Equal(t, domain.RequestApproved, res.Request.Status)
		assert.Equal(t, 2, res.Match.Notified)
		f.requestRepo.AssertExpectations(t)
		f.matcher.AssertExpectations(t)
		f.notifRepo.AssertNotCalled(t, "CloseOpenByRequest", mock.Anything, mock.Anything)
	})

	t.Run("Reject closes notifications and skips matching", func(t *testing.T) {
		f := newFixture()
		ctx, mod := asUser(domain.RoleModerator)
		rejected := &domain.BloodRequest{ID: reqID, Status: domain.RequestRejected}

		f.requestRepo.On("Decide", ctx, reqID, domain.RequestRejected, mod.UserID).Return(rejected, true, nil).Once()
		f.notifRepo.On("CloseOpenByRequest", ctx, reqID).Return(int64(0), nil).Once()
		f.emailSvc.On("SendRequestDecision", ctx, rejected).Return(errors.New("smtp down")).Once()

		res, err := f.svc.SetDecision(ctx, reqID, domain.DecisionReject)

		require.NoError(t, err)
		assert.Nil(t, res.Match)
		f.notifRepo.AssertExpectations(t)
		f.matcher.AssertNotCalled(t, "Plan", mock.Anything, mock.Anything)
	})

	t.Run("Candidate lookup failure leaves request pending", func(t *testing.T) {
		f := newFixture()
		ctx, _ := asUser(domain.RoleAdmin)

		f.requestRepo.On("GetByID", ctx, reqID).Return(pending, nil).Once()
		f.matcher.On("Plan", ctx, pending).Return(nil, errors.New("db gone")).Once()

		_, err := f.svc.SetDecision(ctx, reqID, domain.DecisionApprove)

		require.Error(t, err)
		assert.False(t, errors.Is(err, domain.ErrConflict))
		f.requestRepo.AssertNotCalled(t, "Approve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		f.emailSvc.AssertNotCalled(t, "SendRequestDecision", mock.Anything, mock.Anything)
	})

	t.Run("Not pending is a conflict", func(t *testing.T) {
		f := newFixture()
		ctx, _ := asUser(domain.RoleModerator)
		approved := &domain.BloodRequest{ID: reqID, Status: domain.RequestApproved}

		f.requestRepo.On("GetByID", ctx, reqID).Return(approved, nil).Once()

		_, err := f.svc.SetDecision(ctx, reqID, domain.DecisionApprove)

		assert.True(t, errors.Is(err, domain.ErrConflict))
		f.matcher.AssertNotCalled(t, "Plan", mock.Anything, mock.Anything)
	})

	t.Run("Lost approval race is a conflict", func(t *testing.T) {
		f := newFixture()
		ctx, mod := asUser(domain.RoleModerator)
		plan := &domain.MatchPlan{}

		f.requestRepo.On("GetByID", ctx, reqID).Return(pending, nil).Once()
		f.matcher.On("Plan", ctx, pending).Return(plan, nil).Once()
		f.requestRepo.On("Approve", ctx, reqID, mod.UserID, plan.DonorIDs()).Return(nil, nil, false, nil).Once()

		_, err := f.svc.SetDecision(ctx, reqID, domain.DecisionApprove)

		assert.True(t, errors.Is(err, domain.ErrConflict))
		f.matcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown request", func(t *testing.T) {
		f := newFixture()
		ctx, mod := asUser(domain.RoleModerator)

		f.requestRepo.On("Decide", ctx, reqID, domain.RequestRejected, mod.UserID).
			Return(nil, false, domain.NewNotFoundError("blood request not found")).Once()

		_, err := f.svc.SetDecision(ctx, reqID, domain.DecisionReject)

		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})

	t.Run("Regular user is forbidden", func(t *testing.T) {
		f := newFixture()
		ctx, _ := asUser(domain.RoleUser)

		_, err := f.svc.SetDecision(ctx, reqID, domain.DecisionApprove)

		assert.True(t, errors.Is(err, domain.ErrForbidden))
		f.requestRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

// The approval and its notifications share one transaction, so a failed
// write can be retried by the moderator.
func TestRequestService_ApprovalRetryAfterFailedWrite(t *testing.T) {
	logger, _ := test.NewNullLogger()
	requestRepo := new(mocks.BloodRequestRepository)
	notifRepo := new(mocks.DonorNotificationRepository)
	donorSvc := new(mocks.DonorService)
	donorRepo := new(mocks.DonorRepository)
	emailSvc := new(mocks.EmailService)
	matcher := matching.NewService(donorSvc, donorRepo, notifRepo, emailSvc, dedupe.New(nil, time.Hour, logger), logger, matching.Options{})
	svc := request.NewService(requestRepo, notifRepo, matcher, emailSvc, logger)

	ctx, mod := asUser(domain.RoleModerator)
	reqID := uuid.New()
	pending := &domain.BloodRequest{ID: reqID, BloodGroup: domain.BloodBPositive, Status: domain.RequestPending}
	donor := domain.DonorCandidate{DonorProfile: domain.DonorProfile{UserID: uuid.New(), BloodGroup: domain.BloodBPositive}, Email: "donor@campus.edu"}
	approved := &domain.BloodRequest{ID: reqID, BloodGroup: domain.BloodBPositive, Status: domain.RequestApproved, ModeratorID: &mod.UserID}
	created := []domain.DonorNotification{{ID: uuid.New(), DonorID: donor.UserID, BloodRequestID: reqID, Status: domain.NotifUnread}}

	requestRepo.On("GetByID", ctx, reqID).Return(pending, nil).Twice()
	donorSvc.On("RefreshEligibility", ctx).Return(int64(0), nil).Twice()
	donorRepo.On("FindCandidates", ctx, domain.BloodBPositive).Return([]domain.DonorCandidate{donor}, nil).Twice()
	requestRepo.On("Approve", ctx, reqID, mod.UserID, []uuid.UUID{donor.UserID}).
		Return(nil, nil, false, errors.New("create donor notifications: connection reset")).Once()

	_, err := svc.SetDecision(ctx, reqID, domain.DecisionApprove)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrConflict))
	emailSvc.AssertNotCalled(t, "SendDonorMatch", mock.Anything, mock.Anything, mock.Anything)
	emailSvc.AssertNotCalled(t, "SendRequestDecision", mock.Anything, mock.Anything)

	requestRepo.On("Approve", ctx, reqID, mod.UserID, []uuid.UUID{donor.UserID}).Return(approved, created, true, nil).Once()
	emailSvc.On("SendDonorMatch", ctx, donor, approved).Return(nil).Once()
	emailSvc.On("SendRequestDecision", ctx, approved).Return(nil).Once()

	res, err := svc.SetDecision(ctx, reqID, domain.DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestApproved, res.Request.Status)
	assert.Equal(t, 1, res.Match.Notified)
	assert.Equal(t, 1, res.Match.Dispatch.Sent)
	requestRepo.AssertExpectations(t)
	emailSvc.AssertExpectations(t)
}

func TestRequestService_Rematch(t *testing.T) {
	reqID := uuid.New()

	t.Run("Approved request is matched again", func(t *testing.T) {
		f := newFixture()
		ctx, _ := asUser(domain.RoleModerator)
		approved := &domain.BloodRequest{ID: reqID, Status: domain.RequestApproved}
		f.requestRepo.On("GetByID", ctx, reqID).Return(approved, nil).Once()
		f.matcher.On("Match", ctx, approved).Return(&domain.MatchResult{RequestID: reqID, Notified: 1}, nil).Once()

		res, err := f.svc.Rematch(ctx, reqID)

		require.NoError(t, err)
		assert.Equal(t, 1, res.Notified)
	})

	t.Run("Only approved requests", func(t *testing.T) {
		f := newFixture()
		ctx, _ := asUser(domain.RoleAdmin)
		f.requestRepo.On("GetByID", ctx, reqID).Return(&domain.BloodRequest{ID: reqID, Status: domain.RequestFulfilled}, nil).Once()

		_, err := f.svc.Rematch(ctx, reqID)

		assert.True(t, errors.Is(err, domain.ErrConflict))
		f.matcher.AssertNotCalled(t, "Match", mock.Anything, mock.Anything)
	})

	t.Run("Regular user is forbidden", func(t *testing.T) {
		f := newFixture()
		ctx, _ := asUser(domain.RoleUser)

		_, err := f.svc.Rematch(ctx, reqID)

		assert.True(t, errors.Is(err, domain.ErrForbidden))
	})
}
