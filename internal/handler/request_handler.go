package handler

import (
	"github.com/gofiber/fiber/v2"

	"blood-link/internal/domain"
	"blood-link/internal/middleware"
	"blood-link/internal/service/request"
)

type RequestHandler struct {
	requestService request.Service
}

func NewRequestHandler(requestService request.Service) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var input domain.CreateBloodRequestInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	req, err := h.requestService.Create(c.UserContext(), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(req)
}

func (h *RequestHandler) List(c *fiber.Ctx) error {
	result, err := h.requestService.List(c.UserContext(), c.Query("status"), getPaginationParams(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *RequestHandler) Get(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id", "request")
	if err != nil {
		return err
	}

	req, err := h.requestService.Get(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(req)
}

func (h *RequestHandler) Approve(c *fiber.Ctx) error {
	return h.decide(c, domain.DecisionApprove)
}

func (h *RequestHandler) Reject(c *fiber.Ctx) error {
	return h.decide(c, domain.DecisionReject)
}

func (h *RequestHandler) SetDecision(c *fiber.Ctx) error {
	var input domain.DecisionInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	decision, err := domain.ParseDecision(input.Decision)
	if err != nil {
		return err
	}
	return h.decide(c, decision)
}

func (h *RequestHandler) decide(c *fiber.Ctx, decision domain.Decision) error {
	id, err := parseIDParam(c, "id", "request")
	if err != nil {
		return err
	}

	result, err := h.requestService.SetDecision(c.UserContext(), id, decision)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *RequestHandler) Rematch(c *fiber.Ctx) error {
	id, err := parseIDParam(c, "id", "request")
	if err != nil {
		return err
	}

	result, err := h.requestService.Rematch(c.UserContext(), id)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
