package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"blood-link/internal/config"
	"blood-link/internal/domain"
	"blood-link/internal/pkg/dedupe"
	"blood-link/internal/repository"
	"blood-link/internal/service/acceptance"
	"blood-link/internal/service/auth"
	"blood-link/internal/service/donor"
	"blood-link/internal/service/email"
	"blood-link/internal/service/matching"
	"blood-link/internal/service/notification"
	"blood-link/internal/service/request"
	"blood-link/internal/service/storage"
)

type Services struct {
	Auth         auth.Service
	Request      request.Service
	Donor        donor.Service
	Matching     matching.Service
	Notification notification.Service
	Acceptance   acceptance.Service
	Email        email.Service
	Storage      storage.Service
}

func NewServices(repos *repository.Repositories, redis *redis.Client, minioClient *minio.Client, cfg *config.Config, logger *logrus.Logger) *Services {
	authService := auth.NewService(repos.User, cfg)
	emailService := email.NewService(cfg)
	storageService := storage.NewService(minioClient, cfg)

	policy := domain.NewEligibilityPolicy(cfg.DonorCooldown, cfg.EligibleRegions)
	donorService := donor.NewService(repos.Donor, storageService, policy, logger)

	matchingService := matching.NewService(
		donorService,
		repos.Donor,
		repos.DonorNotification,
		emailService,
		dedupe.New(redis, cfg.MatchDedupeTTL, logger),
		logger,
		matching.Options{
			AsyncDispatch:   cfg.MatchAsyncDispatch,
			DispatchTimeout: cfg.DispatchTimeout,
		},
	)

	requestService := request.NewService(repos.BloodRequest, repos.DonorNotification, matchingService, emailService, logger)
	notificationService := notification.NewService(repos.DonorNotification, repos.RequesterNotification, repos.BloodRequest)
	acceptanceService := acceptance.NewService(
		repos.Acceptance,
		repos.DonorNotification,
		repos.Donor,
		repos.BloodRequest,
		emailService,
		logger,
	)

	return &Services{
		Auth:         authService,
		Request:      requestService,
		Donor:        donorService,
		Matching:     matchingService,
		Notification: notificationService,
		Acceptance:   acceptanceService,
		Email:        emailService,
		Storage:      storageService,
	}
}
