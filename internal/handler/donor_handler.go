package handler

import (
	"github.com/gofiber/fiber/v2"

	"blood-link/internal/domain"
	"blood-link/internal/middleware"
	"blood-link/internal/service/donor"
)

type DonorHandler struct {
	donorService donor.Service
}

func NewDonorHandler(donorService donor.Service) *DonorHandler {
	return &DonorHandler{donorService: donorService}
}

func (h *DonorHandler) CreateProfile(c *fiber.Ctx) error {
	var input domain.CreateDonorProfileInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	profile, err := h.donorService.CreateProfile(c.UserContext(), middleware.GetCurrentUserID(c), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(profile)
}

func (h *DonorHandler) UpdateProfile(c *fiber.Ctx) error {
	var input domain.UpdateDonorProfileInput
	if err := c.BodyParser(&input); err != nil {
		return middleware.BadRequest("Invalid request body")
	}

	profile, err := h.donorService.UpdateProfile(c.UserContext(), middleware.GetCurrentUserID(c), input)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}

func (h *DonorHandler) GetProfile(c *fiber.Ctx) error {
	profile, err := h.donorService.GetProfile(c.UserContext(), middleware.GetCurrentUserID(c))
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}

func (h *DonorHandler) UploadPhoto(c *fiber.Ctx) error {
	file, err := c.FormFile("photo")
	if err != nil {
		return middleware.BadRequest("Photo is required")
	}

	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	reader, err := file.Open()
	if err != nil {
		return err
	}
	defer reader.Close()

	profile, err := h.donorService.UploadPhoto(c.UserContext(), middleware.GetCurrentUserID(c), file.Filename, reader, file.Size, mimeType)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(profile)
}
