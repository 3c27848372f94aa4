package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jungle-quest/quest-api/internal/models"
)

// ProgressTransition reports the outcome of an atomic progress append.
type ProgressTransition struct {
	// Appended is true when this call created the progress entry; false when
	// the level was already completed and the call was a no-op.
	Appended bool
	// CompletedCount is the user's completed-level count after the call.
	CompletedCount int64
}

// UserRepository provides access to user accounts and owns the conditional
// write behind the progress ledger.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (models.User, error)
	// AppendProgress appends a completed progress entry for (userID, levelID)
	// and increments the total score by points, as one transaction. The entry
	// insert is conditional on the (user_id, level_id) unique index: when the
	// entry already exists nothing is written and Appended is false. A reader
	// can never observe the score incremented without the matching entry.
	AppendProgress(ctx context.Context, userID, levelID uint, points int) (ProgressTransition, error)
	// AwardBadge inserts the badge unless the user already holds one with the
	// same name. Returns true when the badge was newly awarded.
	AwardBadge(ctx context.Context, userID uint, name, description string) (bool, error)
	HasBadge(ctx context.Context, userID uint, name string) (bool, error)
}

// NewUserRepository constructs a user repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Progress").
		Preload("Badges").
		First(&user, id).Error
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (r *userRepository) AppendProgress(ctx context.Context, userID, levelID uint, points int) (ProgressTransition, error) {
	var transition ProgressTransition

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := models.ProgressEntry{
			UserID:      userID,
			LevelID:     levelID,
			Completed:   true,
			CompletedAt: time.Now(),
		}

		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "level_id"}},
			DoNothing: true,
		}).Create(&entry)
		if result.Error != nil {
			return result.Error
		}
		transition.Appended = result.RowsAffected == 1

		if transition.Appended {
			err := tx.Model(&models.User{}).
				Where("id = ?", userID).
				UpdateColumn("total_score", gorm.Expr("total_score + ?", points)).Error
			if err != nil {
				return err
			}
		}

		return tx.Model(&models.ProgressEntry{}).
			Where("user_id = ? AND completed = ?", userID, true).
			Count(&transition.CompletedCount).Error
	})
	if err != nil {
		return ProgressTransition{}, err
	}

	return transition, nil
}

func (r *userRepository) AwardBadge(ctx context.Context, userID uint, name, description string) (bool, error) {
	badge := models.Badge{
		UserID:      userID,
		Name:        name,
		Description: description,
		EarnedAt:    time.Now(),
	}

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
		DoNothing: true,
	}).Create(&badge)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected == 1, nil
}

func (r *userRepository) HasBadge(ctx context.Context, userID uint, name string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Badge{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
