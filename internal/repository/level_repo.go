package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jungle-quest/quest-api/internal/models"
)

// LevelRepository exposes persistence operations for challenge levels.
type LevelRepository interface {
	GetByID(ctx context.Context, id uint) (models.Level, error)
	ListActive(ctx context.Context) ([]models.Level, error)
	ListAll(ctx context.Context) ([]models.Level, error)
	Create(ctx context.Context, level *models.Level) error
	Update(ctx context.Context, level *models.Level) error
	Delete(ctx context.Context, id uint) error
}

// NewLevelRepository constructs a level repository.
func NewLevelRepository(db *gorm.DB) LevelRepository {
	return &levelRepository{db: db}
}

type levelRepository struct {
	db *gorm.DB
}

func (r *levelRepository) GetByID(ctx context.Context, id uint) (models.Level, error) {
	var level models.Level
	err := r.db.WithContext(ctx).
		Preload("TestCases").
		First(&level, id).Error
	if err != nil {
		return models.Level{}, err
	}
	return level, nil
}

func (r *levelRepository) ListActive(ctx context.Context) ([]models.Level, error) {
	var levels []models.Level
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("\"order\" ASC").
		Find(&levels).Error
	if err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *levelRepository) ListAll(ctx context.Context) ([]models.Level, error) {
	var levels []models.Level
	err := r.db.WithContext(ctx).
		Preload("TestCases").
		Order("\"order\" ASC").
		Find(&levels).Error
	if err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *levelRepository) Create(ctx context.Context, level *models.Level) error {
	return r.db.WithContext(ctx).Create(level).Error
}

// Update saves the level and makes its stored test cases match
// level.TestCases exactly. FullSaveAssociations only upserts, so rows absent
// from the new set are pruned first.
func (r *levelRepository) Update(ctx context.Context, level *models.Level) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		kept := make([]uint, 0, len(level.TestCases))
		for _, tc := range level.TestCases {
			if tc.ID != 0 {
				kept = append(kept, tc.ID)
			}
		}

		prune := tx.Where("level_id = ?", level.ID)
		if len(kept) > 0 {
			prune = prune.Where("id NOT IN ?", kept)
		}
		if err := prune.Delete(&models.TestCase{}).Error; err != nil {
			return err
		}

		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(level).Error
	})
}

func (r *levelRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Level{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
