package dto

import (
	"gorm.io/datatypes"

	"github.com/jungle-quest/quest-api/internal/models"
)

// TestCaseRequest is a single test case in a level create/update payload.
type TestCaseRequest struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output" validate:"required"`
	Description    string `json:"description"`
}

// LevelCreateRequest is the admin payload for creating a level.
type LevelCreateRequest struct {
	Title          string            `json:"title" validate:"required"`
	Description    string            `json:"description" validate:"required"`
	Difficulty     string            `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	StarterCode    string            `json:"starter_code"`
	ExpectedOutput string            `json:"expected_output" validate:"required"`
	TestCases      []TestCaseRequest `json:"test_cases" validate:"dive"`
	Hints          []string          `json:"hints"`
	Points         int               `json:"points" validate:"omitempty,gte=0"`
	Order          int               `json:"order" validate:"omitempty,gte=1"`
}

// LevelUpdateRequest is the admin payload for updating a level. Nil fields
// are left unchanged.
type LevelUpdateRequest struct {
	Title          *string           `json:"title"`
	Description    *string           `json:"description"`
	Difficulty     *string           `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced"`
	StarterCode    *string           `json:"starter_code"`
	ExpectedOutput *string           `json:"expected_output"`
	TestCases      []TestCaseRequest `json:"test_cases" validate:"omitempty,dive"`
	Hints          []string          `json:"hints"`
	Points         *int              `json:"points" validate:"omitempty,gte=0"`
	Order          *int              `json:"order" validate:"omitempty,gte=1"`
	IsActive       *bool             `json:"is_active"`
}

// TestCaseResponse exposes a test case to API consumers.
type TestCaseResponse struct {
	ID             uint   `json:"id"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	Description    string `json:"description"`
}

// LevelResponse represents a level to API consumers. Test cases are omitted
// from student-facing listings so learners cannot read expected outputs ahead
// of time.
type LevelResponse struct {
	ID              uint               `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	Difficulty      string             `json:"difficulty"`
	DifficultyColor string             `json:"difficulty_color"`
	StarterCode     string             `json:"starter_code"`
	ExpectedOutput  string             `json:"expected_output,omitempty"`
	TestCases       []TestCaseResponse `json:"test_cases,omitempty"`
	Hints           datatypes.JSON     `json:"hints,omitempty"`
	Points          int                `json:"points"`
	Order           int                `json:"order"`
	IsActive        bool               `json:"is_active"`
}

// NewLevelResponse builds a response DTO from a model.
func NewLevelResponse(level models.Level, includeTestCases bool) LevelResponse {
	response := LevelResponse{
		ID:              level.ID,
		Title:           level.Title,
		Description:     level.Description,
		Difficulty:      level.Difficulty,
		DifficultyColor: level.DifficultyColor(),
		StarterCode:     level.StarterCode,
		Hints:           level.Hints,
		Points:          level.Points,
		Order:           level.Order,
		IsActive:        level.IsActive,
	}

	if includeTestCases {
		response.ExpectedOutput = level.ExpectedOutput
		cases := make([]TestCaseResponse, 0, len(level.TestCases))
		for _, tc := range level.TestCases {
			cases = append(cases, TestCaseResponse{
				ID:             tc.ID,
				Input:          tc.Input,
				ExpectedOutput: tc.ExpectedOutput,
				Description:    tc.Description,
			})
		}
		response.TestCases = cases
	}

	return response
}

// NewLevelResponseSlice converts a slice of levels.
func NewLevelResponseSlice(levels []models.Level, includeTestCases bool) []LevelResponse {
	responses := make([]LevelResponse, 0, len(levels))
	for _, level := range levels {
		responses = append(responses, NewLevelResponse(level, includeTestCases))
	}
	return responses
}
