package handler

import (
	"github.com/gofiber/fiber/v2"

	"blood-link/internal/middleware"
	"blood-link/internal/service/auth"
)

func SetupRoutes(app *fiber.App, h *Handlers, authService auth.Service) {
	v1 := app.Group("/api/v1")
	protected := v1.Group("", middleware.AuthRequired(authService))

	requests := protected.Group("/requests")
	requests.Post("/", h.Request.Create)
	requests.Get("/", h.Request.List)
	requests.Get("/:id", h.Request.Get)
	requests.Post("/:id/approve", middleware.RequireModerator(), h.Request.Approve)
	requests.Post("/:id/reject", middleware.RequireModerator(), h.Request.Reject)
	requests.Post("/:id/decision", middleware.RequireModerator(), h.Request.SetDecision)
	requests.Post("/:id/rematch", middleware.RequireModerator(), h.Request.Rematch)

	donors := protected.Group("/donors")
	donors.Post("/me", h.Donor.CreateProfile)
	donors.Put("/me", h.Donor.UpdateProfile)
	donors.Get("/me", h.Donor.GetProfile)
	donors.Post("/me/photo", h.Donor.UploadPhoto)

	donorNotifs := protected.Group("/donor-notifications")
	donorNotifs.Get("/", h.DonorNotification.List)
	donorNotifs.Patch("/:id/read", h.DonorNotification.MarkAsRead)
	donorNotifs.Post("/:id/accept", h.DonorNotification.Accept)

	requesterNotifs := protected.Group("/requester-notifications")
	requesterNotifs.Get("/", h.RequesterNotification.List)
	requesterNotifs.Get("/unread-count", h.RequesterNotification.GetUnreadCount)
	requesterNotifs.Patch("/:id/read", h.RequesterNotification.MarkAsRead)
	requesterNotifs.Post("/mark-all-read", h.RequesterNotification.MarkAllAsRead)

	admin := protected.Group("/admin", middleware.RequireAdmin())
	admin.Post("/refresh-eligibility", h.Admin.RefreshEligibility)
}
