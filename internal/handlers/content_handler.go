package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mannaworks/manna-server/internal/config"
	"github.com/mannaworks/manna-server/internal/dto"
	"github.com/mannaworks/manna-server/internal/middleware"
	"github.com/mannaworks/manna-server/internal/models"
	"github.com/mannaworks/manna-server/internal/services"
)

type ContentHandler struct {
	moderationService *services.ModerationService
	cfg               *config.Config
}

func NewContentHandler(moderationService *services.ModerationService, cfg *config.Config) *ContentHandler {
	return &ContentHandler{moderationService: moderationService, cfg: cfg}
}

// PublicList handles GET /content/public: a deterministic page of published
// series. Without a configured database it serves a single seeded demo item.
func (h *ContentHandler) PublicList(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)

	if !h.cfg.DatabaseConfigured() {
		return c.JSON(fiber.Map{
			"content":       []models.Series{demoSeries()},
			"total":         1,
			"limit":         limit,
			"offset":        offset,
			"notConfigured": true,
		})
	}

	series, total, err := h.moderationService.ListPublished(limit, offset)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch content",
		})
	}

	return c.JSON(fiber.Map{
		"content": series,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// Moderate handles POST /content/:id/approve for admin/moderator callers.
func (h *ContentHandler) Moderate(c *fiber.Ctx) error {
	actorID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	seriesID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid content ID",
		})
	}

	var req dto.ModerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.moderationService.Moderate(seriesID, actorID, &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidAction) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		if errors.Is(err, services.ErrSeriesNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Moderation action failed",
		})
	}

	return c.JSON(resp)
}

// History handles GET /content/:id/history for admin/moderator callers.
func (h *ContentHandler) History(c *fiber.Ctx) error {
	seriesID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid content ID",
		})
	}

	entries, err := h.moderationService.History(seriesID)
	if err != nil {
		if errors.Is(err, services.ErrSeriesNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch history",
		})
	}

	return c.JSON(fiber.Map{"history": entries})
}

// Create handles POST /content: a new draft owned by the caller.
func (h *ContentHandler) Create(c *fiber.Ctx) error {
	creatorID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreateSeriesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	series, err := h.moderationService.CreateSeries(creatorID, &req)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(series)
}

// Submit handles POST /content/:id/submit: draft to review, creator only.
func (h *ContentHandler) Submit(c *fiber.Ctx) error {
	userID, err := middleware.CurrentUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	seriesID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid content ID",
		})
	}

	series, err := h.moderationService.SubmitForReview(seriesID, userID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSeriesNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrNotCreator):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrNotDraft):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to submit for review",
		})
	}

	return c.JSON(series)
}

// demoSeries is the single placeholder item served in demo mode. Fixed values
// keep repeated calls identical.
func demoSeries() models.Series {
	publishedAt := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	return models.Series{
		ID:          uuid.MustParse("00000000-0000-0000-0000-000000000001"),
		Title:       "Tower of Dawn",
		Slug:        "tower-of-dawn",
		Synopsis:    "A sample series shown while no database is configured.",
		Status:      models.StatusPublished,
		PublishedAt: &publishedAt,
		CreatedAt:   publishedAt,
		UpdatedAt:   publishedAt,
	}
}
