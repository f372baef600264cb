package handler

import (
	"github.com/gofiber/fiber/v2"

	"blood-link/internal/service/donor"
)

type AdminHandler struct {
	donorService donor.Service
}

func NewAdminHandler(donorService donor.Service) *AdminHandler {
	return &AdminHandler{donorService: donorService}
}

func (h *AdminHandler) RefreshEligibility(c *fiber.Ctx) error {
	n, err := h.donorService.RefreshEligibility(c.UserContext())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"refreshed": n,
	})
}
