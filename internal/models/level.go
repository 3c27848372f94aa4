package models

import (
	"time"

	"gorm.io/datatypes"
)

// Level difficulty values.
const (
	LevelDifficultyBeginner     = "beginner"
	LevelDifficultyIntermediate = "intermediate"
	LevelDifficultyAdvanced     = "advanced"
)

// DefaultStarterCode is pre-filled into the editor for new levels.
const DefaultStarterCode = "# Write your Python code here\nprint(\"Hello, World!\")"

// Level represents a gradable coding challenge.
type Level struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Title          string         `gorm:"size:255;not null" json:"title"`
	Description    string         `gorm:"type:text;not null" json:"description"`
	Difficulty     string         `gorm:"size:32;not null;default:beginner" json:"difficulty"`
	StarterCode    string         `gorm:"type:text" json:"starter_code"`
	ExpectedOutput string         `gorm:"type:text;not null" json:"expected_output"`
	TestCases      []TestCase     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"test_cases"`
	Hints          datatypes.JSON `json:"hints"`
	Points         int            `gorm:"not null;default:10" json:"points"`
	Order          int            `gorm:"not null;default:1" json:"order"`
	IsActive       bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TestCase is a single (input, expected output) pair used to judge a submission.
type TestCase struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	LevelID        uint   `gorm:"not null;index" json:"level_id"`
	Input          string `gorm:"type:text" json:"input"`
	ExpectedOutput string `gorm:"type:text;not null" json:"expected_output"`
	Description    string `gorm:"size:255" json:"description"`
}

// GradingCases returns the test cases the grader must run. Levels without
// explicit test cases are graded against a single implicit case built from the
// level's expected output.
func (l Level) GradingCases() []TestCase {
	if len(l.TestCases) > 0 {
		return l.TestCases
	}
	return []TestCase{{LevelID: l.ID, Input: "", ExpectedOutput: l.ExpectedOutput}}
}

// DifficultyColor maps the difficulty onto the CSS class used by the frontend.
func (l Level) DifficultyColor() string {
	switch l.Difficulty {
	case LevelDifficultyBeginner:
		return "text-green-500"
	case LevelDifficultyIntermediate:
		return "text-orange-500"
	case LevelDifficultyAdvanced:
		return "text-red-500"
	default:
		return "text-gray-500"
	}
}
