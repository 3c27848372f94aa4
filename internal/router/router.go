package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jungle-quest/quest-api/internal/config"
	"github.com/jungle-quest/quest-api/internal/handler"
	"github.com/jungle-quest/quest-api/internal/middleware"
	"github.com/jungle-quest/quest-api/internal/models"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	LevelHandler      *handler.LevelHandler
	SubmissionHandler *handler.SubmissionHandler
	ProgressHandler   *handler.ProgressHandler
	SeedHandler       *handler.SeedHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	adminOnly := middleware.RequireRole(models.UserRoleAdmin)

	if deps.LevelHandler != nil {
		levels := api.Group("/levels", jwtMiddleware)
		deps.LevelHandler.RegisterAdmin(levels, adminOnly)
		deps.LevelHandler.Register(levels)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		deps.SubmissionHandler.RegisterAdmin(submissions.Group("/admin", adminOnly))
		deps.SubmissionHandler.Register(submissions,
			middleware.RequireRole(models.UserRoleStudent),
			middleware.RateLimit("submit", cfg.SubmitRateLimit, time.Minute),
		)
	}

	if deps.ProgressHandler != nil {
		progress := api.Group("/progress", jwtMiddleware)
		deps.ProgressHandler.Register(progress)
	}

	if deps.SeedHandler != nil {
		seed := api.Group("/seed")
		deps.SeedHandler.Register(seed)
	}
}
