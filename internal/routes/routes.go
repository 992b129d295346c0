package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/mannaworks/manna-server/internal/config"
	"github.com/mannaworks/manna-server/internal/handlers"
	"github.com/mannaworks/manna-server/internal/middleware"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	contentHandler *handlers.ContentHandler,
	userHandler *handlers.UserHandler,
	libraryHandler *handlers.LibraryHandler,
	profileHandler *handlers.ProfileHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	api.Get("/health", healthHandler.Check)

	// Auth — stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	if !cfg.DatabaseConfigured() {
		auth.Use(requireDatabase)
	}
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	// Logout needs no valid token: sessions end by client-side discard.
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/verify", authHandler.Verify)

	// Content — public listing, creator endpoints, moderation. The public
	// listing works without a database (it serves the seeded demo item);
	// everything else needs one.
	api.Get("/content/public", contentHandler.PublicList)

	content := api.Group("/content")
	if !cfg.DatabaseConfigured() {
		content.Use(requireDatabase)
	}
	content.Post("/", middleware.Protected(cfg), contentHandler.Create)
	content.Post("/:id/submit", middleware.Protected(cfg), contentHandler.Submit)
	content.Post("/:id/approve",
		middleware.Protected(cfg),
		middleware.RequireRoles("admin", "moderator"),
		contentHandler.Moderate)
	content.Get("/:id/history",
		middleware.Protected(cfg),
		middleware.RequireRoles("admin", "moderator"),
		contentHandler.History)

	// Current user
	me := api.Group("/users/me")
	if !cfg.DatabaseConfigured() {
		me.Use(requireDatabase)
	}
	me.Use(middleware.Protected(cfg))
	me.Get("/", userHandler.Me)
	me.Post("/avatar", userHandler.UploadAvatar)
	me.Post("/background", userHandler.UploadBackground)
	me.Post("/change-email", userHandler.ChangeEmail)
	me.Post("/change-password", userHandler.ChangePassword)
	me.Put("/profile-settings", userHandler.ProfileSettings)

	me.Get("/library", libraryHandler.List)
	me.Post("/library", libraryHandler.Add)
	me.Put("/library/:seriesId", libraryHandler.Update)
	me.Delete("/library/:seriesId", libraryHandler.Remove)

	me.Get("/profile", profileHandler.Profile)
	me.Get("/activity", profileHandler.Activity)
	me.Get("/achievements", profileHandler.Achievements)
	me.Get("/notifications", profileHandler.Notifications)
}

// requireDatabase rejects persisted operations while running in demo mode.
func requireDatabase(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error":   true,
		"message": "Service unavailable: no database configured",
	})
}
