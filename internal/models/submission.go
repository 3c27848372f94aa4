package models

import (
	"time"

	"gorm.io/datatypes"
)

// Submission stores a user's latest passing attempt for a level. The archive
// keeps at most one row per (user, level); a new passing submission replaces
// the previous one.
type Submission struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index:idx_submission_user_level" json:"user_id"`
	LevelID         uint           `gorm:"not null;index:idx_submission_user_level" json:"level_id"`
	Code            string         `gorm:"type:text;not null" json:"code"`
	Output          string         `gorm:"type:text" json:"output"`
	IsCorrect       bool           `gorm:"not null;default:false" json:"is_correct"`
	ExecutionTimeMs int64          `gorm:"not null;default:0" json:"execution_time_ms"`
	ErrorMessage    string         `gorm:"type:text" json:"error_message"`
	TestResults     datatypes.JSON `json:"test_results"`
	SubmittedAt     time.Time      `gorm:"index" json:"submitted_at"`
}
