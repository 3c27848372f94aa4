package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jungle-quest/quest-api/internal/models"
)

// SubmissionRepository persists the latest passing submission per
// (user, level) pair.
type SubmissionRepository interface {
	// Replace deletes any archived submission for the pair and inserts the
	// new one, in one transaction. Net effect: exactly one row per pair.
	Replace(ctx context.Context, submission *models.Submission) error
	ListForUserLevel(ctx context.Context, userID, levelID uint, limit int) ([]models.Submission, error)
	ListAll(ctx context.Context) ([]models.Submission, error)
}

// NewSubmissionRepository constructs a submission repository.
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &submissionRepository{db: db}
}

type submissionRepository struct {
	db *gorm.DB
}

func (r *submissionRepository) Replace(ctx context.Context, submission *models.Submission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND level_id = ?", submission.UserID, submission.LevelID).
			Delete(&models.Submission{}).Error
		if err != nil {
			return err
		}
		return tx.Create(submission).Error
	})
}

func (r *submissionRepository) ListForUserLevel(ctx context.Context, userID, levelID uint, limit int) ([]models.Submission, error) {
	if limit <= 0 {
		limit = 10
	}

	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND level_id = ?", userID, levelID).
		Order("submitted_at DESC").
		Limit(limit).
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}

func (r *submissionRepository) ListAll(ctx context.Context) ([]models.Submission, error) {
	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Order("submitted_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}
	return submissions, nil
}
