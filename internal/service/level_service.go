package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/jungle-quest/quest-api/internal/dto"
	"github.com/jungle-quest/quest-api/internal/models"
	"github.com/jungle-quest/quest-api/internal/repository"
)

// LevelService exposes level content operations. The grading engine itself
// only ever consumes active levels; the write side exists for admins.
type LevelService interface {
	ListActive(ctx context.Context) ([]dto.LevelResponse, error)
	Get(ctx context.Context, id uint) (dto.LevelResponse, error)
	ListAll(ctx context.Context) ([]dto.LevelResponse, error)
	Create(ctx context.Context, payload dto.LevelCreateRequest) (dto.LevelResponse, error)
	Update(ctx context.Context, id uint, payload dto.LevelUpdateRequest) (dto.LevelResponse, error)
	Delete(ctx context.Context, id uint) error
}

type levelService struct {
	levels    repository.LevelRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewLevelService constructs a level service.
func NewLevelService(levelRepo repository.LevelRepository, validate *validator.Validate, logger zerolog.Logger) LevelService {
	return &levelService{
		levels:    levelRepo,
		validator: validate,
		logger:    logger.With().Str("component", "level_service").Logger(),
	}
}

// ListActive returns active levels ordered for the level map. Test cases and
// expected outputs are withheld from the listing.
func (s *levelService) ListActive(ctx context.Context) ([]dto.LevelResponse, error) {
	levels, err := s.levels.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewLevelResponseSlice(levels, false), nil
}

func (s *levelService) Get(ctx context.Context, id uint) (dto.LevelResponse, error) {
	level, err := s.levels.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LevelResponse{}, ErrLevelNotFound
		}
		return dto.LevelResponse{}, err
	}
	if !level.IsActive {
		return dto.LevelResponse{}, ErrLevelNotFound
	}
	return dto.NewLevelResponse(level, true), nil
}

func (s *levelService) ListAll(ctx context.Context) ([]dto.LevelResponse, error) {
	levels, err := s.levels.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewLevelResponseSlice(levels, true), nil
}

func (s *levelService) Create(ctx context.Context, payload dto.LevelCreateRequest) (dto.LevelResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LevelResponse{}, err
	}

	level := models.Level{
		Title:          payload.Title,
		Description:    payload.Description,
		Difficulty:     payload.Difficulty,
		StarterCode:    payload.StarterCode,
		ExpectedOutput: payload.ExpectedOutput,
		TestCases:      testCasesFromRequest(payload.TestCases),
		Points:         payload.Points,
		Order:          payload.Order,
		IsActive:       true,
	}
	if level.Difficulty == "" {
		level.Difficulty = models.LevelDifficultyBeginner
	}
	if level.StarterCode == "" {
		level.StarterCode = models.DefaultStarterCode
	}
	if level.Points == 0 {
		level.Points = 10
	}
	if level.Order == 0 {
		level.Order = 1
	}

	hints, err := marshalHints(payload.Hints)
	if err != nil {
		return dto.LevelResponse{}, err
	}
	level.Hints = hints

	if err := s.levels.Create(ctx, &level); err != nil {
		return dto.LevelResponse{}, err
	}

	s.logger.Info().Uint("level_id", level.ID).Str("title", level.Title).Msg("level created")
	return dto.NewLevelResponse(level, true), nil
}

func (s *levelService) Update(ctx context.Context, id uint, payload dto.LevelUpdateRequest) (dto.LevelResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LevelResponse{}, err
	}

	level, err := s.levels.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LevelResponse{}, ErrLevelNotFound
		}
		return dto.LevelResponse{}, err
	}

	if payload.Title != nil {
		level.Title = *payload.Title
	}
	if payload.Description != nil {
		level.Description = *payload.Description
	}
	if payload.Difficulty != nil {
		level.Difficulty = *payload.Difficulty
	}
	if payload.StarterCode != nil {
		level.StarterCode = *payload.StarterCode
	}
	if payload.ExpectedOutput != nil {
		level.ExpectedOutput = *payload.ExpectedOutput
	}
	if payload.TestCases != nil {
		cases := testCasesFromRequest(payload.TestCases)
		for i := range cases {
			cases[i].LevelID = level.ID
		}
		level.TestCases = cases
	}
	if payload.Hints != nil {
		hints, err := marshalHints(payload.Hints)
		if err != nil {
			return dto.LevelResponse{}, err
		}
		level.Hints = hints
	}
	if payload.Points != nil {
		level.Points = *payload.Points
	}
	if payload.Order != nil {
		level.Order = *payload.Order
	}
	if payload.IsActive != nil {
		level.IsActive = *payload.IsActive
	}

	if err := s.levels.Update(ctx, &level); err != nil {
		return dto.LevelResponse{}, err
	}

	s.logger.Info().Uint("level_id", level.ID).Msg("level updated")
	return dto.NewLevelResponse(level, true), nil
}

func (s *levelService) Delete(ctx context.Context, id uint) error {
	if err := s.levels.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLevelNotFound
		}
		return err
	}
	s.logger.Info().Uint("level_id", id).Msg("level deleted")
	return nil
}

func testCasesFromRequest(cases []dto.TestCaseRequest) []models.TestCase {
	result := make([]models.TestCase, 0, len(cases))
	for _, tc := range cases {
		result = append(result, models.TestCase{
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			Description:    tc.Description,
		})
	}
	return result
}

func marshalHints(hints []string) (datatypes.JSON, error) {
	if hints == nil {
		return nil, nil
	}
	data, err := json.Marshal(hints)
	if err != nil {
		return nil, fmt.Errorf("marshal hints: %w", err)
	}
	return datatypes.JSON(data), nil
}
