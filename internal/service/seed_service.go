package service

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jungle-quest/quest-api/internal/dto"
)

var (
	// ErrSeedDisabled indicates the seeding tools are disabled by configuration.
	ErrSeedDisabled = errors.New("seeding is disabled")
	// ErrSeedUnauthorized indicates the provided token is invalid.
	ErrSeedUnauthorized = errors.New("invalid seed token")
)

// levelSeedSchema constrains imported level documents before any row is
// written.
const levelSeedSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["title", "description", "expected_output"],
    "properties": {
      "title": {"type": "string", "minLength": 1},
      "description": {"type": "string", "minLength": 1},
      "difficulty": {"enum": ["beginner", "intermediate", "advanced"]},
      "starter_code": {"type": "string"},
      "expected_output": {"type": "string", "minLength": 1},
      "test_cases": {
        "type": "array",
        "items": {
          "type": "object",
          "required": ["expected_output"],
          "properties": {
            "input": {"type": "string"},
            "expected_output": {"type": "string", "minLength": 1},
            "description": {"type": "string"}
          }
        }
      },
      "hints": {"type": "array", "items": {"type": "string"}},
      "points": {"type": "integer", "minimum": 0},
      "order": {"type": "integer", "minimum": 1}
    }
  }
}`

// SeedService imports level content in bulk, gated behind a shared token.
type SeedService interface {
	SeedLevels(ctx context.Context, token string, payload json.RawMessage) (int, error)
}

type seedService struct {
	levels    LevelService
	schema    *jsonschema.Schema
	sanitizer *bluemonday.Policy
	enabled   bool
	token     string
	logger    zerolog.Logger
}

// NewSeedService constructs a seeding service.
func NewSeedService(levels LevelService, enabled bool, token string, logger zerolog.Logger) (SeedService, error) {
	schema, err := jsonschema.CompileString("levels.json", levelSeedSchema)
	if err != nil {
		return nil, fmt.Errorf("compile level seed schema: %w", err)
	}

	return &seedService{
		levels:    levels,
		schema:    schema,
		sanitizer: bluemonday.StrictPolicy(),
		enabled:   enabled,
		token:     token,
		logger:    logger.With().Str("component", "seed_service").Logger(),
	}, nil
}

func (s *seedService) SeedLevels(ctx context.Context, token string, payload json.RawMessage) (int, error) {
	if !s.enabled {
		return 0, ErrSeedDisabled
	}
	if !s.validateToken(token) {
		return 0, ErrSeedUnauthorized
	}

	var document interface{}
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()
	if err := decoder.Decode(&document); err != nil {
		return 0, fmt.Errorf("decode seed payload: %w", err)
	}
	if err := s.schema.Validate(document); err != nil {
		return 0, fmt.Errorf("seed payload rejected: %w", err)
	}

	var requests []dto.LevelCreateRequest
	if err := json.Unmarshal(payload, &requests); err != nil {
		return 0, fmt.Errorf("unmarshal seed payload: %w", err)
	}

	created := 0
	for _, request := range requests {
		s.sanitizeRequest(&request)
		if _, err := s.levels.Create(ctx, request); err != nil {
			return created, err
		}
		created++
	}

	s.logger.Info().Int("created", created).Msg("levels seeded")
	return created, nil
}

func (s *seedService) sanitizeRequest(request *dto.LevelCreateRequest) {
	request.Title = strings.TrimSpace(s.sanitizer.Sanitize(request.Title))
	request.Description = strings.TrimSpace(s.sanitizer.Sanitize(request.Description))
	for i, hint := range request.Hints {
		request.Hints[i] = strings.TrimSpace(s.sanitizer.Sanitize(hint))
	}
}

func (s *seedService) validateToken(token string) bool {
	if s.token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) == 1
}
