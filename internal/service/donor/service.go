package donor

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"blood-link/internal/domain"
	"blood-link/internal/metrics"
	"blood-link/internal/pkg/validate"
	"blood-link/internal/repository"
	"blood-link/internal/service/storage"
)

const (
	maxPhotoSize      = 5 << 20
	maxUpdateAttempts = 3
)

type Service interface {
	CreateProfile(ctx context.Context, userID uuid.UUID, input domain.CreateDonorProfileInput) (*domain.DonorProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input domain.UpdateDonorProfileInput) (*domain.DonorProfile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.DonorProfile, error)
	UploadPhoto(ctx context.Context, userID uuid.UUID, fileName string, reader io.Reader, size int64, contentType string) (*domain.DonorProfile, error)
	ComputeAutoAvailability(district string, lastDonation *time.Time, now time.Time) bool
	// RefreshEligibility makes donors whose cooldown has elapsed available
	// again. It never marks anyone unavailable.
	RefreshEligibility(ctx context.Context) (int64, error)
}

type service struct {
	donorRepo  repository.DonorRepository
	storageSvc storage.Service
	policy     domain.EligibilityPolicy
	logger     *logrus.Logger
	now        func() time.Time
}

func NewService(donorRepo repository.DonorRepository, storageSvc storage.Service, policy domain.EligibilityPolicy, logger *logrus.Logger) Service {
	return &service{
		donorRepo:  donorRepo,
		storageSvc: storageSvc,
		policy:     policy,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *service) CreateProfile(ctx context.Context, userID uuid.UUID, input domain.CreateDonorProfileInput) (*domain.DonorProfile, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	phone, err := normalizeOptionalPhone(input.Phone)
	if err != nil {
		return nil, err
	}

	profile := &domain.DonorProfile{
		ID:               uuid.New(),
		UserID:           userID,
		BloodGroup:       input.BloodGroup,
		LastDonationDate: input.LastDonationDate,
		District:         strings.TrimSpace(input.District),
		Location:         input.Location,
		Phone:            phone,
	}
	s.applyAvailability(profile, input.IsAvailable)

	if err := s.donorRepo.Create(ctx, profile); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":      userID,
		"blood_group":  profile.BloodGroup,
		"is_available": profile.IsAvailable,
	}).Info("donor profile created")

	return profile, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input domain.UpdateDonorProfileInput) (*domain.DonorProfile, error) {
	if err := validate.Struct(input); err != nil {
		return nil, err
	}

	phone, err := normalizeOptionalPhone(input.Phone)
	if err != nil {
		return nil, err
	}

	// Update only lands on the version it read; a concurrent write such as
	// an acceptance forces a fresh read.
	for attempt := 1; ; attempt++ {
		profile, err := s.donorRepo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}
		s.applyUpdate(profile, input, phone)

		err = s.donorRepo.Update(ctx, profile)
		if err == nil {
			return profile, nil
		}
		if !errors.Is(err, repository.ErrStaleDonorProfile) || attempt == maxUpdateAttempts {
			return nil, err
		}
		s.logger.WithField("user_id", userID).Debug("donor profile changed during update, retrying")
	}
}

func (s *service) applyUpdate(profile *domain.DonorProfile, input domain.UpdateDonorProfileInput, phone *string) {
	if input.BloodGroup != nil {
		profile.BloodGroup = *input.BloodGroup
	}
	if input.District != nil {
		profile.District = strings.TrimSpace(*input.District)
	}
	if input.Location != nil {
		profile.Location = input.Location
	}
	if input.Phone != nil {
		profile.Phone = phone
	}
	if input.LastDonationDate != nil {
		profile.LastDonationDate = input.LastDonationDate
		// A newly recorded donation releases a manual pin.
		profile.AvailabilityOverridden = false
	}

	if input.IsAvailable != nil || !profile.AvailabilityOverridden {
		s.applyAvailability(profile, input.IsAvailable)
	}
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.DonorProfile, error) {
	return s.donorRepo.GetByUserID(ctx, userID)
}

func (s *service) UploadPhoto(ctx context.Context, userID uuid.UUID, fileName string, reader io.Reader, size int64, contentType string) (*domain.DonorProfile, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return nil, domain.NewValidationError("photo must be an image")
	}
	if size <= 0 || size > maxPhotoSize {
		return nil, domain.NewValidationError("photo must be between 1 byte and 5 MB")
	}

	profile, err := s.donorRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	url, err := s.storageSvc.Upload(ctx, "donors", fileName, reader, size, contentType)
	if err != nil {
		return nil, err
	}

	if err := s.donorRepo.SetPhotoURL(ctx, userID, url); err != nil {
		_ = s.storageSvc.Delete(ctx, url)
		return nil, err
	}

	if profile.PhotoURL != nil {
		if err := s.storageSvc.Delete(ctx, *profile.PhotoURL); err != nil {
			s.logger.WithError(err).WithField("user_id", userID).Warn("failed to remove previous donor photo")
		}
	}

	profile.PhotoURL = &url
	return profile, nil
}

func (s *service) ComputeAutoAvailability(district string, lastDonation *time.Time, now time.Time) bool {
	return s.policy.AutoAvailability(district, lastDonation, now)
}

func (s *service) RefreshEligibility(ctx context.Context) (int64, error) {
	n, err := s.donorRepo.RefreshEligibility(ctx, s.policy.CooldownCutoff(s.now()), s.policy.RegionList())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		metrics.EligibilityRefreshed.Add(float64(n))
		s.logger.WithField("donors", n).Info("donor eligibility refreshed")
	}
	return n, nil
}

// applyAvailability lets an explicit value win over the computed one and pins
// it, so later edits and the sweep leave it alone.
func (s *service) applyAvailability(profile *domain.DonorProfile, explicit *bool) {
	if explicit != nil {
		profile.IsAvailable = *explicit
		profile.AvailabilityOverridden = true
		return
	}
	profile.IsAvailable = s.ComputeAutoAvailability(profile.District, profile.LastDonationDate, s.now())
	profile.AvailabilityOverridden = false
}

func normalizeOptionalPhone(raw *string) (*string, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	phone, ok := domain.NormalizePhone(*raw)
	if !ok {
		return nil, domain.NewValidationError("phone must be 10 to 15 digits, optionally starting with +")
	}
	return &phone, nil
}
