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

// SubmissionHandler exposes the submission endpoints.
type SubmissionHandler struct {
	service   service.SubmissionService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewSubmissionHandler constructs the handler.
func NewSubmissionHandler(service service.SubmissionService, validator *validator.Validate, logger zerolog.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "submission_handler").Logger(),
	}
}

// Register wires the submission endpoints into the router group. The guards
// apply to the submit route only; reading archived submissions needs just an
// authenticated caller.
func (h *SubmissionHandler) Register(router fiber.Router, submitGuards ...fiber.Handler) {
	router.Post("/:levelId", append(submitGuards, h.submit)...)
	router.Get("/:levelId", h.list)
}

// RegisterAdmin wires the admin endpoints into the router group.
func (h *SubmissionHandler) RegisterAdmin(router fiber.Router) {
	router.Get("/all", h.listAll)
}

func (h *SubmissionHandler) submit(c *fiber.Ctx) error {
	levelID, err := parseUintParam(c, "levelId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	var payload dto.SubmitRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	response, err := h.service.Submit(c.Context(), userID, levelID, payload)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, response.Message, response)
}

func (h *SubmissionHandler) list(c *fiber.Ctx) error {
	levelID, err := parseUintParam(c, "levelId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	userID := userIDFromContext(c)
	if userID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	submissions, err := h.service.ListForLevel(c.Context(), userID, levelID)
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) listAll(c *fiber.Ctx) error {
	submissions, err := h.service.ListAll(c.Context())
	if err != nil {
		return h.handleError(c, err)
	}

	return utils.SendSuccess(c, "submissions retrieved", submissions)
}

func (h *SubmissionHandler) handleError(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	switch {
	case errors.Is(err, service.ErrEmptyCode):
		return utils.SendError(c, fiber.StatusBadRequest, "Code is required")
	case errors.Is(err, service.ErrLevelNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "Level not found")
	case errors.Is(err, service.ErrUserNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "User not found")
	case errors.As(err, &validationErrors):
		return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
	default:
		h.logger.Error().Err(err).Msg("submission operation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}
}
