package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jungle-quest/quest-api/internal/dto"
	"github.com/jungle-quest/quest-api/internal/service"
	"github.com/jungle-quest/quest-api/internal/utils"
)

// LevelHandler exposes level endpoints.
type LevelHandler struct {
	service   service.LevelService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewLevelHandler constructs the handler.
func NewLevelHandler(service service.LevelService, validator *validator.Validate, logger zerolog.Logger) *LevelHandler {
	return &LevelHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "level_handler").Logger(),
	}
}

// Register wires the student-facing endpoints into the router group.
func (h *LevelHandler) Register(router fiber.Router) {
	router.Get("", h.list)
	router.Get("/:id", h.get)
}

// RegisterAdmin wires the content-management endpoints onto the same group,
// each behind the given guard. The write routes share their paths with the
// student reads, so the guard applies per route rather than per group.
func (h *LevelHandler) RegisterAdmin(router fiber.Router, adminOnly fiber.Handler) {
	router.Get("/admin/all", adminOnly, h.listAll)
	router.Post("", adminOnly, h.create)
	router.Put("/:id", adminOnly, h.update)
	router.Delete("/:id", adminOnly, h.delete)
}

func (h *LevelHandler) list(c *fiber.Ctx) error {
	levels, err := h.service.ListActive(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "levels retrieved", levels)
}

func (h *LevelHandler) get(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	level, err := h.service.Get(c.Context(), id)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "level retrieved", level)
}

func (h *LevelHandler) listAll(c *fiber.Ctx) error {
	levels, err := h.service.ListAll(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "levels retrieved", levels)
}

func (h *LevelHandler) create(c *fiber.Ctx) error {
	var payload dto.LevelCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	level, err := h.service.Create(c.Context(), payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "Level created successfully", level)
}

func (h *LevelHandler) update(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.LevelUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	level, err := h.service.Update(c.Context(), id, payload)
	if err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "Level updated successfully", level)
}

func (h *LevelHandler) delete(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return h.handleError(c, err)
	}
	return utils.SendSuccess(c, "Level deleted successfully", nil)
}

func (h *LevelHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrLevelNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "Level not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("level operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
