package main

import (
	"github.com/urfave/cli/v2"

	"blood-link/internal/config"
	"blood-link/internal/domain"
	"blood-link/internal/repository"
	"blood-link/internal/service/donor"
)

// Meant for cron; the API runs the same sweep before every match.
var refreshEligibilityCommand = &cli.Command{
	Name:  "refresh-eligibility",
	Usage: "Make donors whose cooldown has elapsed available again",
	Action: func(cCtx *cli.Context) error {
		cfg := config.Load()
		logger := config.NewLogger(cfg)

		db, err := config.NewPostgresDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		policy := domain.NewEligibilityPolicy(cfg.DonorCooldown, cfg.EligibleRegions)
		donorService := donor.NewService(repository.NewDonorRepository(db), nil, policy, logger)

		n, err := donorService.RefreshEligibility(cCtx.Context)
		if err != nil {
			return err
		}
		logger.WithField("refreshed", n).Info("eligibility sweep finished")
		return nil
	},
}
