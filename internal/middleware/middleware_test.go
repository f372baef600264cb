package middleware_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"blood-link/internal/domain"
	"blood-link/internal/middleware"
	"blood-link/internal/mocks"
)

func newApp() (*fiber.App, *test.Hook) {
	logger, hook := test.NewNullLogger()
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger)})
	return app, hook
}

func decode(t *testing.T, body io.Reader) middleware.ErrorResponse {
	t.Helper()
	var resp middleware.ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&resp))
	return resp
}

func TestErrorHandler_MapsDomainErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", domain.NewValidationError("contact_phone is required"), 400, "BAD_REQUEST"},
		{"unauthorized", domain.NewUnauthorizedError("invalid or expired token"), 401, "UNAUTHORIZED"},
		{"forbidden", domain.NewForbiddenError("no"), 403, "FORBIDDEN"},
		{"not found", domain.NewNotFoundError("blood request not found"), 404, "NOT_FOUND"},
		{"already accepted", domain.ErrAlreadyAccepted, 409, "CONFLICT"},
		{"fiber error", fiber.NewError(fiber.StatusBadRequest, "Invalid request body"), 400, "BAD_REQUEST"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app, _ := newApp()
			app.Get("/", func(c *fiber.Ctx) error { return tc.err })

			resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
			require.NoError(t, err)

			assert.Equal(t, tc.status, resp.StatusCode)
			body := decode(t, resp.Body)
			assert.Equal(t, tc.code, body.Code)
			assert.NotEmpty(t, body.TraceID)
		})
	}
}

func TestErrorHandler_HidesInternalErrors(t *testing.T) {
	app, hook := newApp()
	app.Get("/", func(c *fiber.Ctx) error {
		return errors.New("pq: connection refused to 10.0.0.5")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)

	assert.Equal(t, 500, resp.StatusCode)
	body := decode(t, resp.Body)
	assert.Equal(t, "Internal server error", body.Message)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, body.TraceID, hook.LastEntry().Data["trace_id"])
}

func TestAuthRequired(t *testing.T) {
	identity := &domain.Identity{UserID: uuid.New(), Email: "mod@campus.edu", Role: domain.RoleModerator, IsVerified: true}

	setup := func(authSvc *mocks.AuthService) *fiber.App {
		app, _ := newApp()
		app.Use(middleware.AuthRequired(authSvc))
		app.Get("/me", func(c *fiber.Ctx) error {
			id, err := domain.RequireIdentity(c.UserContext())
			if err != nil {
				return err
			}
			return c.JSON(fiber.Map{"user_id": id.UserID})
		})
		app.Get("/admin", middleware.RequireAdmin(), func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusNoContent)
		})
		return app
	}

	t.Run("Missing header", func(t *testing.T) {
		app := setup(new(mocks.AuthService))

		resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)
	})

	t.Run("Valid token reaches handler with identity", func(t *testing.T) {
		authSvc := new(mocks.AuthService)
		authSvc.On("Authenticate", mock.Anything, "good").Return(identity, nil)
		app := setup(authSvc)

		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer good")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, 200, resp.StatusCode)
		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, identity.UserID.String(), body["user_id"])
	})

	t.Run("Moderator cannot reach admin route", func(t *testing.T) {
		authSvc := new(mocks.AuthService)
		authSvc.On("Authenticate", mock.Anything, "good").Return(identity, nil)
		app := setup(authSvc)

		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Authorization", "Bearer good")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, 403, resp.StatusCode)
	})

	t.Run("Rejected token", func(t *testing.T) {
		authSvc := new(mocks.AuthService)
		authSvc.On("Authenticate", mock.Anything, "bad").Return(nil, domain.NewUnauthorizedError("invalid or expired token"))
		app := setup(authSvc)

		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer bad")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, 401, resp.StatusCode)
		assert.Equal(t, "invalid or expired token", decode(t, resp.Body).Message)
	})
}
