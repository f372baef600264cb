package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"blood-link/internal/config"
	"blood-link/internal/domain"
	"blood-link/internal/repository"
	"blood-link/internal/service/auth"
)

// tokenCommand signs a bearer token with the shared secret, for local
// development without the identity provider.
var tokenCommand = &cli.Command{
	Name:  "token",
	Usage: "Issue a development access token",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "email", Required: true},
		&cli.StringFlag{Name: "name"},
		&cli.StringFlag{Name: "user-id", Usage: "defaults to a random UUID"},
		&cli.StringFlag{Name: "role", Value: string(domain.RoleUser)},
		&cli.BoolFlag{Name: "verified", Value: true},
		&cli.DurationFlag{Name: "ttl", Value: 0, Usage: "defaults to 24h"},
	},
	Action: func(cCtx *cli.Context) error {
		cfg := config.Load()
		if cfg.IsProduction() {
			return fmt.Errorf("token issuing is disabled in production")
		}

		userID := uuid.New()
		if raw := cCtx.String("user-id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return fmt.Errorf("invalid user-id: %w", err)
			}
			userID = id
		}

		role := domain.UserRole(cCtx.String("role"))
		if !role.IsValid() {
			return fmt.Errorf("unknown role %q", role)
		}

		ttl := cCtx.Duration("ttl")
		if ttl <= 0 {
			ttl = 24 * time.Hour
		}

		var users repository.UserRepository
		token, err := auth.NewService(users, cfg).IssueAccessToken(domain.Identity{
			UserID:     userID,
			Email:      cCtx.String("email"),
			FullName:   cCtx.String("name"),
			Role:       role,
			IsVerified: cCtx.Bool("verified"),
		}, ttl)
		if err != nil {
			return err
		}

		fmt.Println(token)
		return nil
	},
}
