package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jungle-quest/quest-api/internal/dto"
	"github.com/jungle-quest/quest-api/internal/models"
)

func newLevelFixture() (LevelService, *stubLevelRepo) {
	levels := &stubLevelRepo{levels: map[uint]models.Level{
		1: {ID: 1, Title: "Hello", Description: "d", ExpectedOutput: "hello", Order: 1, IsActive: true},
		2: {ID: 2, Title: "Hidden", Description: "d", ExpectedOutput: "x", Order: 2, IsActive: false},
	}}
	return NewLevelService(levels, validator.New(validator.WithRequiredStructEnabled()), zerolog.Nop()), levels
}

func TestLevelServiceGetHidesInactive(t *testing.T) {
	svc, _ := newLevelFixture()

	_, err := svc.Get(context.Background(), 2)
	require.ErrorIs(t, err, ErrLevelNotFound)

	level, err := svc.Get(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, "Hello", level.Title)
	require.Equal(t, "hello", level.ExpectedOutput)
}

func TestLevelServiceCreateAppliesDefaults(t *testing.T) {
	svc, levels := newLevelFixture()

	created, err := svc.Create(context.Background(), dto.LevelCreateRequest{
		Title:          "Sum",
		Description:    "Sum two numbers",
		ExpectedOutput: "3",
	})
	require.NoError(t, err)
	require.Equal(t, models.LevelDifficultyBeginner, created.Difficulty)
	require.Equal(t, models.DefaultStarterCode, created.StarterCode)
	require.Equal(t, 10, created.Points)
	require.Equal(t, 1, created.Order)
	require.True(t, created.IsActive)

	stored := levels.levels[created.ID]
	require.Equal(t, "Sum", stored.Title)
}

func TestLevelServiceCreateRequiresCoreFields(t *testing.T) {
	svc, _ := newLevelFixture()

	_, err := svc.Create(context.Background(), dto.LevelCreateRequest{Title: "No output"})
	var validationErrors validator.ValidationErrors
	require.ErrorAs(t, err, &validationErrors)
}

func TestLevelServiceUpdateAppliesPartialChanges(t *testing.T) {
	svc, levels := newLevelFixture()

	title := "Hello v2"
	inactive := false
	updated, err := svc.Update(context.Background(), 1, dto.LevelUpdateRequest{
		Title:    &title,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	require.Equal(t, "Hello v2", updated.Title)
	require.False(t, updated.IsActive)
	require.Equal(t, "hello", levels.levels[1].ExpectedOutput, "untouched fields stay as stored")
}

func TestLevelServiceDeleteMissing(t *testing.T) {
	svc, _ := newLevelFixture()

	err := svc.Delete(context.Background(), 42)
	require.ErrorIs(t, err, ErrLevelNotFound)
}

func TestLevelServiceListActiveWithholdsAnswers(t *testing.T) {
	svc, _ := newLevelFixture()

	listed, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Empty(t, listed[0].ExpectedOutput)
	require.Empty(t, listed[0].TestCases)
}
