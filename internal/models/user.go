package models

import "time"

// User roles.
const (
	UserRoleStudent = "student"
	UserRoleAdmin   = "admin"
)

// User holds the progress-relevant portion of a learner account. Progress and
// badge rows are written exclusively through the progress ledger.
type User struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	Email      string          `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role       string          `gorm:"size:32;not null;default:student" json:"role"`
	TotalScore int             `gorm:"not null;default:0" json:"total_score"`
	Progress   []ProgressEntry `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"progress"`
	Badges     []Badge         `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"badges"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ProgressEntry records that a user completed a level. The composite unique
// index is what makes the ledger's conditional append race-safe.
type ProgressEntry struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_progress_user_level" json:"user_id"`
	LevelID     uint      `gorm:"not null;uniqueIndex:idx_progress_user_level" json:"level_id"`
	Completed   bool      `gorm:"not null;default:true" json:"completed"`
	CompletedAt time.Time `json:"completed_at"`
}

// Badge is a one-time achievement marker. Names are unique per user.
type Badge struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_badge_user_name" json:"user_id"`
	Name        string    `gorm:"size:64;not null;uniqueIndex:idx_badge_user_name" json:"name"`
	Description string    `gorm:"size:255" json:"description"`
	EarnedAt    time.Time `json:"earned_at"`
}

// Badge names and descriptions awarded by the progress ledger.
const (
	BadgeFirstSteps     = "First Steps"
	BadgeExplorer       = "Python Explorer"
	BadgeTestCaseMaster = "Test Case Master"
)

// BadgeDescriptions maps badge names to their display text.
var BadgeDescriptions = map[string]string{
	BadgeFirstSteps:     "Completed your first challenge!",
	BadgeExplorer:       "Completed 5 challenges!",
	BadgeTestCaseMaster: "Passed all test cases in a challenge!",
}

// CompletedCount returns how many levels the user has completed.
func (u User) CompletedCount() int {
	count := 0
	for _, entry := range u.Progress {
		if entry.Completed {
			count++
		}
	}
	return count
}

// HasBadge reports whether the user already holds a badge by name.
func (u User) HasBadge(name string) bool {
	for _, badge := range u.Badges {
		if badge.Name == name {
			return true
		}
	}
	return false
}
