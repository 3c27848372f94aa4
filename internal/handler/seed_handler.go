package handler

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jungle-quest/quest-api/internal/service"
	"github.com/jungle-quest/quest-api/internal/utils"
)

// SeedHandler exposes the token-gated level import endpoint.
type SeedHandler struct {
	service service.SeedService
	logger  zerolog.Logger
}

// NewSeedHandler constructs the handler.
func NewSeedHandler(service service.SeedService, logger zerolog.Logger) *SeedHandler {
	return &SeedHandler{
		service: service,
		logger:  logger.With().Str("component", "seed_handler").Logger(),
	}
}

// Register wires the handler endpoints into the router group.
func (h *SeedHandler) Register(router fiber.Router) {
	router.Post("/levels", h.seedLevels)
}

func (h *SeedHandler) seedLevels(c *fiber.Ctx) error {
	token := strings.TrimSpace(c.Get("X-Seed-Token"))

	created, err := h.service.SeedLevels(c.Context(), token, json.RawMessage(c.Body()))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSeedDisabled):
			return utils.SendError(c, fiber.StatusNotFound, "seeding disabled")
		case errors.Is(err, service.ErrSeedUnauthorized):
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid seed token")
		default:
			h.logger.Error().Err(err).Msg("level seeding failed")
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
	}

	return utils.SendSuccess(c, "levels seeded", fiber.Map{"created": created})
}
