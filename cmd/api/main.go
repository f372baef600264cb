package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using environment variables")
	}

	app := &cli.App{
		Name:  "blood-link",
		Usage: "Campus blood donation API",
		Commands: []*cli.Command{
			serveCommand,
			migrateCommand,
			refreshEligibilityCommand,
			tokenCommand,
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}
