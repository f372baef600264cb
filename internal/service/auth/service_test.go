package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blood-link/internal/config"
	"blood-link/internal/domain"
	"blood-link/internal/mocks"
	"blood-link/internal/service/auth"
)

func TestAuthService_Authenticate(t *testing.T) {
	cfg := &config.Config{JWTSecret: "test-secret", JWTIssuer: "campus-idp"}
	ctx := context.Background()
	identity := domain.Identity{
		UserID:     uuid.New(),
		Email:      "donor@campus.edu",
		FullName:   "Nadia",
		Role:       domain.RoleModerator,
		IsVerified: true,
	}

	t.Run("Valid token syncs user", func(t *testing.T) {
		users := new(mocks.UserRepository)
		svc := auth.NewService(users, cfg)
		token, err := svc.IssueAccessToken(identity, time.Hour)
		require.NoError(t, err)

		users.On("Upsert", ctx, mock.MatchedBy(func(u *domain.User) bool {
			return u.ID == identity.UserID && u.Role == "moderator" && u.IsVerified
		})).Return(nil).Once()

		got, err := svc.Authenticate(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, identity.UserID, got.UserID)
		assert.True(t, got.CanModerate())
		users.AssertExpectations(t)
	})

	t.Run("Expired token", func(t *testing.T) {
		svc := auth.NewService(new(mocks.UserRepository), cfg)
		token, err := svc.IssueAccessToken(identity, -time.Minute)
		require.NoError(t, err)

		_, err = svc.Authenticate(ctx, token)

		assert.True(t, errors.Is(err, domain.ErrUnauthorized))
	})

	t.Run("Wrong issuer", func(t *testing.T) {
		other := auth.NewService(new(mocks.UserRepository), &config.Config{JWTSecret: "test-secret", JWTIssuer: "elsewhere"})
		token, err := other.IssueAccessToken(identity, time.Hour)
		require.NoError(t, err)

		_, err = auth.NewService(new(mocks.UserRepository), cfg).ValidateAccessToken(token)

		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("Unknown role falls back to user", func(t *testing.T) {
		users := new(mocks.UserRepository)
		svc := auth.NewService(users, cfg)
		odd := identity
		odd.Role = "superhero"
		token, err := svc.IssueAccessToken(odd, time.Hour)
		require.NoError(t, err)
		users.On("Upsert", ctx, mock.Anything).Return(nil).Once()

		got, err := svc.Authenticate(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, domain.RoleUser, got.Role)
	})
}
