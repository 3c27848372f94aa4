package dto

import (
	"time"

	"github.com/jungle-quest/quest-api/internal/models"
)

// ProgressEntryResponse exposes one completed level.
type ProgressEntryResponse struct {
	LevelID     uint      `json:"level_id"`
	Completed   bool      `json:"completed"`
	CompletedAt time.Time `json:"completed_at"`
}

// BadgeResponse exposes an earned badge.
type BadgeResponse struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earned_at"`
}

// UserSnapshotResponse is the progress-relevant view of a user account
// returned after a recorded submission and from the progress endpoint.
type UserSnapshotResponse struct {
	TotalScore int                     `json:"total_score"`
	Progress   []ProgressEntryResponse `json:"progress"`
	Badges     []BadgeResponse         `json:"badges"`
	Name       string                  `json:"name"`
	Role       string                  `json:"role"`
	Email      string                  `json:"email"`
}

// NewUserSnapshotResponse builds a snapshot DTO from a model.
func NewUserSnapshotResponse(user models.User) UserSnapshotResponse {
	progress := make([]ProgressEntryResponse, 0, len(user.Progress))
	for _, entry := range user.Progress {
		progress = append(progress, ProgressEntryResponse{
			LevelID:     entry.LevelID,
			Completed:   entry.Completed,
			CompletedAt: entry.CompletedAt,
		})
	}

	badges := make([]BadgeResponse, 0, len(user.Badges))
	for _, badge := range user.Badges {
		badges = append(badges, BadgeResponse{
			Name:        badge.Name,
			Description: badge.Description,
			EarnedAt:    badge.EarnedAt,
		})
	}

	return UserSnapshotResponse{
		TotalScore: user.TotalScore,
		Progress:   progress,
		Badges:     badges,
		Name:       user.Name,
		Role:       user.Role,
		Email:      user.Email,
	}
}
