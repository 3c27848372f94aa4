package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jungle-quest/quest-api/internal/models"
)

func archivedSubmission(userID, levelID uint, code string, at time.Time) models.Submission {
	return models.Submission{
		UserID:          userID,
		LevelID:         levelID,
		Code:            code,
		Output:          "Test 1: Passed",
		IsCorrect:       true,
		ExecutionTimeMs: 21,
		SubmittedAt:     at,
	}
}

func TestReplaceKeepsOneRowPerUserAndLevel(t *testing.T) {
	db := setupQuestTestDB(t, &models.Submission{})
	repo := NewSubmissionRepository(db)

	now := time.Now()
	first := archivedSubmission(1, 3, "print('v1')", now)
	require.NoError(t, repo.Replace(context.Background(), &first))

	second := archivedSubmission(1, 3, "print('v2')", now.Add(time.Minute))
	require.NoError(t, repo.Replace(context.Background(), &second))

	rows, err := repo.ListForUserLevel(context.Background(), 1, 3, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "print('v2')", rows[0].Code)
}

func TestReplaceDoesNotTouchOtherPairs(t *testing.T) {
	db := setupQuestTestDB(t, &models.Submission{})
	repo := NewSubmissionRepository(db)

	now := time.Now()
	mine := archivedSubmission(1, 3, "print('mine')", now)
	require.NoError(t, repo.Replace(context.Background(), &mine))
	theirs := archivedSubmission(2, 3, "print('theirs')", now)
	require.NoError(t, repo.Replace(context.Background(), &theirs))
	otherLevel := archivedSubmission(1, 4, "print('other level')", now)
	require.NoError(t, repo.Replace(context.Background(), &otherLevel))

	replacement := archivedSubmission(1, 3, "print('updated')", now.Add(time.Minute))
	require.NoError(t, repo.Replace(context.Background(), &replacement))

	all, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)

	rows, err := repo.ListForUserLevel(context.Background(), 2, 3, 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "print('theirs')", rows[0].Code)
}

func TestListForUserLevelOrdersNewestFirst(t *testing.T) {
	db := setupQuestTestDB(t, &models.Submission{})
	repo := NewSubmissionRepository(db)

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	older := archivedSubmission(1, 3, "print('old')", base)
	require.NoError(t, db.Create(&older).Error)
	newer := archivedSubmission(1, 3, "print('new')", base.Add(time.Hour))
	require.NoError(t, db.Create(&newer).Error)

	rows, err := repo.ListForUserLevel(context.Background(), 1, 3, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "print('new')", rows[0].Code)
	require.Equal(t, "print('old')", rows[1].Code)
}

func TestListForUserLevelDefaultsLimit(t *testing.T) {
	db := setupQuestTestDB(t, &models.Submission{})
	repo := NewSubmissionRepository(db)

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		row := archivedSubmission(1, 3, "print('x')", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, db.Create(&row).Error)
	}

	rows, err := repo.ListForUserLevel(context.Background(), 1, 3, 0)
	require.NoError(t, err)
	require.Len(t, rows, 10)
}
