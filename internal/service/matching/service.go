package matching

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"blood-link/internal/domain"
	"blood-link/internal/metrics"
	"blood-link/internal/pkg/dedupe"
	"blood-link/internal/repository"
	"blood-link/internal/service/donor"
	"blood-link/internal/service/email"
)

type Service interface {
	// Plan refreshes eligibility and selects every available, verified donor
	// of the request's blood group. It writes no notifications.
	Plan(ctx context.Context, req *domain.BloodRequest) (*domain.MatchPlan, error)
	// Dispatch emails the donors whose notifications were just created.
	// Emails go out synchronously or in the background.
	Dispatch(ctx context.Context, req *domain.BloodRequest, plan *domain.MatchPlan, created []domain.DonorNotification) *domain.MatchResult
	// Match notifies matching donors that have no notification yet for an
	// already approved request.
	Match(ctx context.Context, req *domain.BloodRequest) (*domain.MatchResult, error)
	// Wait blocks until background dispatches have finished.
	Wait()
}

type Options struct {
	AsyncDispatch   bool
	DispatchTimeout time.Duration
}

type service struct {
	donorSvc  donor.Service
	donorRepo repository.DonorRepository
	notifRepo repository.DonorNotificationRepository
	emailSvc  email.Service
	deduper   *dedupe.Deduper
	logger    *logrus.Logger
	opts      Options
	inflight  sync.WaitGroup
}

func NewService(
	donorSvc donor.Service,
	donorRepo repository.DonorRepository,
	notifRepo repository.DonorNotificationRepository,
	emailSvc email.Service,
	deduper *dedupe.Deduper,
	logger *logrus.Logger,
	opts Options,
) Service {
	if opts.DispatchTimeout <= 0 {
		opts.DispatchTimeout = 2 * time.Minute
	}
	return &service{
		donorSvc:  donorSvc,
		donorRepo: donorRepo,
		notifRepo: notifRepo,
		emailSvc:  emailSvc,
		deduper:   deduper,
		logger:    logger,
		opts:      opts,
	}
}

func (s *service) Plan(ctx context.Context, req *domain.BloodRequest) (*domain.MatchPlan, error) {
	plan := &domain.MatchPlan{}

	// A failed sweep only means fewer candidates.
	refreshed, err := s.donorSvc.RefreshEligibility(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("request_id", req.ID).Warn("eligibility refresh failed before matching")
	}
	plan.Refreshed = refreshed

	candidates, err := s.donorRepo.FindCandidates(ctx, req.BloodGroup)
	if err != nil {
		return nil, err
	}
	plan.Candidates = candidates
	return plan, nil
}

func (s *service) Match(ctx context.Context, req *domain.BloodRequest) (*domain.MatchResult, error) {
	plan, err := s.Plan(ctx, req)
	if err != nil {
		return nil, err
	}

	var created []domain.DonorNotification
	if len(plan.Candidates) > 0 {
		created, err = s.notifRepo.CreateForRequest(ctx, req.ID, plan.DonorIDs())
		if err != nil {
			return nil, err
		}
	}
	return s.Dispatch(ctx, req, plan, created), nil
}

func (s *service) Dispatch(ctx context.Context, req *domain.BloodRequest, plan *domain.MatchPlan, created []domain.DonorNotification) *domain.MatchResult {
	log := s.logger.WithFields(logrus.Fields{
		"request_id":  req.ID,
		"blood_group": req.BloodGroup,
	})
	result := &domain.MatchResult{
		RequestID:  req.ID,
		Refreshed:  plan.Refreshed,
		Candidates: len(plan.Candidates),
		Notified:   len(created),
	}
	if len(plan.Candidates) == 0 {
		log.Info("no donor candidates for request")
		result.Dispatch = &domain.DispatchResult{}
		return result
	}
	metrics.DonorNotificationsCreated.Add(float64(len(created)))

	byUser := make(map[uuid.UUID]domain.DonorCandidate, len(plan.Candidates))
	for _, c := range plan.Candidates {
		byUser[c.UserID] = c
	}

	// Donors notified by an earlier run are not emailed again.
	recipients := make([]domain.DonorCandidate, 0, len(created))
	for _, n := range created {
		if c, ok := byUser[n.DonorID]; ok {
			recipients = append(recipients, c)
		}
	}

	log = log.WithFields(logrus.Fields{
		"candidates": result.Candidates,
		"notified":   result.Notified,
	})

	if s.opts.AsyncDispatch {
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			bg, cancel := context.WithTimeout(context.Background(), s.opts.DispatchTimeout)
			defer cancel()
			s.logDispatch(log, s.dispatch(bg, req, recipients))
		}()
		log.Info("donor notifications created, emails dispatching in background")
		return result
	}

	result.Dispatch = s.dispatch(ctx, req, recipients)
	s.logDispatch(log, result.Dispatch)
	return result
}

func (s *service) Wait() {
	s.inflight.Wait()
}

// dispatch sends one email per recipient. Failures are collected and never
// stop the batch.
func (s *service) dispatch(ctx context.Context, req *domain.BloodRequest, recipients []domain.DonorCandidate) *domain.DispatchResult {
	res := &domain.DispatchResult{Total: len(recipients)}
	scope := "match:" + req.ID.String()

	for _, c := range recipients {
		if !s.deduper.AcquireOnce(ctx, scope, c.UserID.String()) {
			res.Skipped++
			metrics.RecordMatchEmail("skipped")
			continue
		}

		if err := s.emailSvc.SendDonorMatch(ctx, c, req); err != nil {
			s.deduper.Release(ctx, scope, c.UserID.String())
			res.Failures = append(res.Failures, domain.SendFailure{Recipient: c.Email, Error: err.Error()})
			metrics.RecordMatchEmail("failed")
			continue
		}
		res.Sent++
		metrics.RecordMatchEmail("sent")
	}
	return res
}

func (s *service) logDispatch(log *logrus.Entry, res *domain.DispatchResult) {
	entry := log.WithFields(logrus.Fields{
		"total":   res.Total,
		"sent":    res.Sent,
		"skipped": res.Skipped,
		"failed":  len(res.Failures),
	})
	if len(res.Failures) > 0 {
		entry.WithField("failures", res.Failures).Warn("donor match emails partially failed")
		return
	}
	entry.Info("donor match emails dispatched")
}
