package main

import (
	"github.com/urfave/cli/v2"

	"blood-link/internal/config"
	"blood-link/internal/repository"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Apply database migrations",
	Action: func(cCtx *cli.Context) error {
		cfg := config.Load()
		logger := config.NewLogger(cfg)

		db, err := config.NewPostgresDB(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := repository.Migrate(cCtx.Context, db)
		if err != nil {
			return err
		}
		logger.WithField("migrations", applied).Info("database migrated")
		return nil
	},
}
