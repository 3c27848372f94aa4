package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jungle-quest/quest-api/internal/models"
)

func setupQuestTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()

	// Per-test named memory database so state never leaks between tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(entities...))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	return db
}

func seedUser(t *testing.T, db *gorm.DB) models.User {
	t.Helper()
	user := models.User{Name: "Jane", Email: "jane@example.com", Role: models.UserRoleStudent}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestAppendProgressFirstCompletion(t *testing.T) {
	db := setupQuestTestDB(t, &models.User{}, &models.ProgressEntry{}, &models.Badge{})
	repo := NewUserRepository(db)
	user := seedUser(t, db)

	transition, err := repo.AppendProgress(context.Background(), user.ID, 3, 10)
	require.NoError(t, err)
	require.True(t, transition.Appended)
	require.Equal(t, int64(1), transition.CompletedCount)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.Equal(t, 10, reloaded.TotalScore)
}

func TestAppendProgressRepeatCompletionDoesNotDoubleCount(t *testing.T) {
	db := setupQuestTestDB(t, &models.User{}, &models.ProgressEntry{}, &models.Badge{})
	repo := NewUserRepository(db)
	user := seedUser(t, db)

	first, err := repo.AppendProgress(context.Background(), user.ID, 3, 10)
	require.NoError(t, err)
	require.True(t, first.Appended)

	second, err := repo.AppendProgress(context.Background(), user.ID, 3, 10)
	require.NoError(t, err)
	require.False(t, second.Appended)
	require.Equal(t, int64(1), second.CompletedCount)

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.Equal(t, 10, reloaded.TotalScore, "score increments exactly once per level")

	var entries int64
	require.NoError(t, db.Model(&models.ProgressEntry{}).Where("user_id = ?", user.ID).Count(&entries).Error)
	require.Equal(t, int64(1), entries)
}

func TestAppendProgressConcurrentWritersScoreOnce(t *testing.T) {
	db := setupQuestTestDB(t, &models.User{}, &models.ProgressEntry{}, &models.Badge{})
	repo := NewUserRepository(db)
	user := seedUser(t, db)

	const writers = 8
	appended := make(chan bool, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			transition, err := repo.AppendProgress(context.Background(), user.ID, 7, 10)
			if err == nil {
				appended <- transition.Appended
			}
		}()
	}
	wg.Wait()
	close(appended)

	wins := 0
	for won := range appended {
		if won {
			wins++
		}
	}
	require.Equal(t, 1, wins, "exactly one writer may append the entry")

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.Equal(t, 10, reloaded.TotalScore)

	var entries int64
	require.NoError(t, db.Model(&models.ProgressEntry{}).Where("user_id = ?", user.ID).Count(&entries).Error)
	require.Equal(t, int64(1), entries)
}

func TestAppendProgressDistinctLevelsAccumulate(t *testing.T) {
	db := setupQuestTestDB(t, &models.User{}, &models.ProgressEntry{}, &models.Badge{})
	repo := NewUserRepository(db)
	user := seedUser(t, db)

	for level := uint(1); level <= 3; level++ {
		transition, err := repo.AppendProgress(context.Background(), user.ID, level, 10)
		require.NoError(t, err)
		require.True(t, transition.Appended)
		require.Equal(t, int64(level), transition.CompletedCount)
	}

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, user.ID).Error)
	require.Equal(t, 30, reloaded.TotalScore)
}

func TestAwardBadgeIsIdempotentPerName(t *testing.T) {
	db := setupQuestTestDB(t, &models.User{}, &models.ProgressEntry{}, &models.Badge{})
	repo := NewUserRepository(db)
	user := seedUser(t, db)

	granted, err := repo.AwardBadge(context.Background(), user.ID, models.BadgeFirstSteps, models.BadgeDescriptions[models.BadgeFirstSteps])
	require.NoError(t, err)
	require.True(t, granted)

	again, err := repo.AwardBadge(context.Background(), user.ID, models.BadgeFirstSteps, models.BadgeDescriptions[models.BadgeFirstSteps])
	require.NoError(t, err)
	require.False(t, again)

	has, err := repo.HasBadge(context.Background(), user.ID, models.BadgeFirstSteps)
	require.NoError(t, err)
	require.True(t, has)

	var badges int64
	require.NoError(t, db.Model(&models.Badge{}).Where("user_id = ?", user.ID).Count(&badges).Error)
	require.Equal(t, int64(1), badges)
}

func TestGetByIDPreloadsProgressAndBadges(t *testing.T) {
	db := setupQuestTestDB(t, &models.User{}, &models.ProgressEntry{}, &models.Badge{})
	repo := NewUserRepository(db)
	user := seedUser(t, db)

	_, err := repo.AppendProgress(context.Background(), user.ID, 1, 10)
	require.NoError(t, err)
	_, err = repo.AwardBadge(context.Background(), user.ID, models.BadgeFirstSteps, "Completed your first challenge!")
	require.NoError(t, err)

	loaded, err := repo.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Progress, 1)
	require.Len(t, loaded.Badges, 1)
	require.Equal(t, 10, loaded.TotalScore)
	require.Equal(t, 1, loaded.CompletedCount())
	require.True(t, loaded.HasBadge(models.BadgeFirstSteps))
}

func TestGetByIDUnknownUser(t *testing.T) {
	db := setupQuestTestDB(t, &models.User{}, &models.ProgressEntry{}, &models.Badge{})
	repo := NewUserRepository(db)

	_, err := repo.GetByID(context.Background(), 404)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
