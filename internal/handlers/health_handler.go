package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mannaworks/manna-server/internal/config"
	"github.com/mannaworks/manna-server/internal/database"
	"github.com/mannaworks/manna-server/internal/dto"
)

type HealthHandler struct {
	cfg *config.Config
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "not configured"
	if h.cfg.DatabaseConfigured() {
		dbStatus = "ok"
		if err := database.Ping(); err != nil {
			dbStatus = "unreachable"
		}
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}
