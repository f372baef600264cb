package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"blood-link/internal/domain"
	"blood-link/internal/middleware"
	"blood-link/internal/service"
)

type Handlers struct {
	Request               *RequestHandler
	Donor                 *DonorHandler
	DonorNotification     *DonorNotificationHandler
	RequesterNotification *RequesterNotificationHandler
	Admin                 *AdminHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Request:               NewRequestHandler(services.Request),
		Donor:                 NewDonorHandler(services.Donor),
		DonorNotification:     NewDonorNotificationHandler(services.Notification, services.Acceptance),
		RequesterNotification: NewRequesterNotificationHandler(services.Notification),
		Admin:                 NewAdminHandler(services.Donor),
	}
}

func getPaginationParams(c *fiber.Ctx) domain.PaginationParams {
	params := domain.DefaultPagination()

	if page := c.QueryInt("page", 1); page > 0 {
		params.Page = page
	}
	if pageSize := c.QueryInt("page_size", 20); pageSize > 0 {
		params.PageSize = pageSize
	}

	params.Validate()
	return params
}

func parseIDParam(c *fiber.Ctx, name, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, middleware.BadRequest("Invalid " + label + " ID")
	}
	return id, nil
}
