package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mannaworks/manna-server/internal/dto"
	"github.com/mannaworks/manna-server/internal/middleware"
	"github.com/mannaworks/manna-server/internal/notify"
	"github.com/mannaworks/manna-server/internal/services"
)

type ProfileHandler struct {
	profileService *services.ProfileService
	notifier       *notify.Notifier
}

func NewProfileHandler(profileService *services.ProfileService, notifier *notify.Notifier) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, notifier: notifier}
}

func (h *ProfileHandler) Profile(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	profile, err := h.profileService.GetProfile(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch profile",
		})
	}
	return c.JSON(profile)
}

func (h *ProfileHandler) Activity(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	entries, err := h.profileService.RecentActivity(userID, c.QueryInt("limit", 20))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch activity",
		})
	}
	return c.JSON(fiber.Map{"activity": entries})
}

func (h *ProfileHandler) Achievements(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	achievements, err := h.profileService.Achievements(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch achievements",
		})
	}
	return c.JSON(fiber.Map{"achievements": achievements})
}

func (h *ProfileHandler) Notifications(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	notifications, err := h.notifier.ListForUser(userID, c.QueryInt("limit", 20))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch notifications",
		})
	}
	return c.JSON(fiber.Map{"notifications": notifications})
}
