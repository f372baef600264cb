package handler

import (
	"github.com/gofiber/fiber/v2"

	"blood-link/internal/service/acceptance"
	"blood-link/internal/service/notification"
)

type DonorNotificationHandler struct {
	notifService      notification.Service
	acceptanceService acceptance.Service
}

func NewDonorNotificationHandler(notifService notification.Service, acceptanceService acceptance.Service) *DonorNotificationHandler {
	return &DonorNotificationHandler{
		notifService:      notifService,
		acceptanceService: acceptanceService,
	}
}

func (h *DonorNotificationHandler) List(c *fiber.Ctx) error {
	result, err := h.notifService.ListDonorNotifications(c.UserContext(), c.Query("status"), getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *DonorNotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	notif, err := h.notifService.MarkDonorNotificationRead(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(notif)
}

func (h *DonorNotificationHandler) Accept(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	result, err := h.acceptanceService.Accept(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

type RequesterNotificationHandler struct {
	notifService notification.Service
}

func NewRequesterNotificationHandler(notifService notification.Service) *RequesterNotificationHandler {
	return &RequesterNotificationHandler{notifService: notifService}
}

func (h *RequesterNotificationHandler) List(c *fiber.Ctx) error {
	unreadOnly := c.Query("unread_only") == "true"

	result, err := h.notifService.ListRequesterNotifications(c.UserContext(), unreadOnly, getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *RequesterNotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	count, err := h.notifService.GetRequesterUnreadCount(c.UserContext())
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count": count,
	})
}

func (h *RequesterNotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	if err := h.notifService.MarkRequesterNotificationRead(c.UserContext(), id); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}

func (h *RequesterNotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	if err := h.notifService.MarkAllRequesterNotificationsRead(c.UserContext()); err != nil {
		return err
	}

	return c.Status(fiber.StatusNoContent).SendString("")
}
