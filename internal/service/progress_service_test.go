package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jungle-quest/quest-api/internal/grader"
	"github.com/jungle-quest/quest-api/internal/models"
	"github.com/jungle-quest/quest-api/internal/repository"
)

type appendResult struct {
	transition repository.ProgressTransition
	err        error
}

type stubUserRepo struct {
	user        models.User
	userErr     error
	appendQueue []appendResult
	appendCalls int
	awarded     []string
	held        map[string]bool
}

func (s *stubUserRepo) GetByID(context.Context, uint) (models.User, error) {
	if s.userErr != nil {
		return models.User{}, s.userErr
	}
	return s.user, nil
}

func (s *stubUserRepo) AppendProgress(context.Context, uint, uint, int) (repository.ProgressTransition, error) {
	if s.appendCalls >= len(s.appendQueue) {
		return repository.ProgressTransition{}, gorm.ErrInvalidTransaction
	}
	result := s.appendQueue[s.appendCalls]
	s.appendCalls++
	return result.transition, result.err
}

func (s *stubUserRepo) AwardBadge(_ context.Context, _ uint, name, _ string) (bool, error) {
	if s.held == nil {
		s.held = map[string]bool{}
	}
	if s.held[name] {
		return false, nil
	}
	s.held[name] = true
	s.awarded = append(s.awarded, name)
	return true, nil
}

func (s *stubUserRepo) HasBadge(_ context.Context, _ uint, name string) (bool, error) {
	return s.held[name], nil
}

func fullPassReport() grader.Report {
	return grader.Report{
		Results:       []grader.TestCaseResult{{Passed: true}},
		PassedCount:   1,
		TotalCount:    1,
		AllPassed:     true,
		PercentPassed: 1,
	}
}

func TestRecordCompletionFirstTimeAwardsFirstStepsAndTestCaseMaster(t *testing.T) {
	users := &stubUserRepo{
		user: models.User{ID: 1, Name: "Jane", TotalScore: 10},
		appendQueue: []appendResult{
			{transition: repository.ProgressTransition{Appended: true, CompletedCount: 1}},
		},
	}
	svc := NewProgressService(users, nil, 0, nil, zerolog.Nop())

	outcome, err := svc.RecordCompletion(context.Background(), 1, models.Level{ID: 3, Points: 10}, fullPassReport())
	require.NoError(t, err)
	require.True(t, outcome.FirstCompletion)
	require.Equal(t, []string{models.BadgeFirstSteps, models.BadgeTestCaseMaster}, outcome.AwardedBadges)
	require.Equal(t, 10, outcome.Snapshot.TotalScore)
}

func TestRecordCompletionFifthLevelAwardsExplorer(t *testing.T) {
	users := &stubUserRepo{
		user: models.User{ID: 1, TotalScore: 50},
		appendQueue: []appendResult{
			{transition: repository.ProgressTransition{Appended: true, CompletedCount: 5}},
		},
		held: map[string]bool{
			models.BadgeFirstSteps:     true,
			models.BadgeTestCaseMaster: true,
		},
	}
	svc := NewProgressService(users, nil, 0, nil, zerolog.Nop())

	outcome, err := svc.RecordCompletion(context.Background(), 1, models.Level{ID: 9, Points: 10}, fullPassReport())
	require.NoError(t, err)
	require.Equal(t, []string{models.BadgeExplorer}, outcome.AwardedBadges)
}

func TestRecordCompletionAlreadyCompletedIsNoOp(t *testing.T) {
	users := &stubUserRepo{
		user: models.User{ID: 1, TotalScore: 10},
		appendQueue: []appendResult{
			{transition: repository.ProgressTransition{Appended: false, CompletedCount: 1}},
		},
	}
	svc := NewProgressService(users, nil, 0, nil, zerolog.Nop())

	outcome, err := svc.RecordCompletion(context.Background(), 1, models.Level{ID: 3, Points: 10}, fullPassReport())
	require.NoError(t, err)
	require.False(t, outcome.FirstCompletion)
	require.Empty(t, outcome.AwardedBadges)
	require.Empty(t, users.awarded, "badge rules must not run on repeat completions")
	require.Equal(t, 10, outcome.Snapshot.TotalScore, "score stays unchanged")
}

func TestRecordCompletionRetriesOnceOnConflict(t *testing.T) {
	users := &stubUserRepo{
		user: models.User{ID: 1, TotalScore: 10},
		appendQueue: []appendResult{
			{err: gorm.ErrDuplicatedKey},
			{transition: repository.ProgressTransition{Appended: true, CompletedCount: 1}},
		},
	}
	svc := NewProgressService(users, nil, 0, nil, zerolog.Nop())

	outcome, err := svc.RecordCompletion(context.Background(), 1, models.Level{ID: 3, Points: 10}, fullPassReport())
	require.NoError(t, err)
	require.True(t, outcome.FirstCompletion)
	require.Equal(t, 2, users.appendCalls)
}

func TestRecordCompletionConflictOnRetryMeansAlreadyCompleted(t *testing.T) {
	users := &stubUserRepo{
		user: models.User{ID: 1, TotalScore: 10},
		appendQueue: []appendResult{
			{err: gorm.ErrDuplicatedKey},
			{err: gorm.ErrDuplicatedKey},
		},
	}
	svc := NewProgressService(users, nil, 0, nil, zerolog.Nop())

	outcome, err := svc.RecordCompletion(context.Background(), 1, models.Level{ID: 3, Points: 10}, fullPassReport())
	require.NoError(t, err, "a lost race is the idempotent already-completed outcome")
	require.False(t, outcome.FirstCompletion)
	require.Empty(t, outcome.AwardedBadges)
}

func TestSnapshotServedFromCacheUntilInvalidated(t *testing.T) {
	server := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { cache.Close() })

	users := &stubUserRepo{
		user: models.User{ID: 1, Name: "Jane", TotalScore: 0},
		appendQueue: []appendResult{
			{transition: repository.ProgressTransition{Appended: true, CompletedCount: 1}},
		},
	}
	svc := NewProgressService(users, cache, time.Minute, nil, zerolog.Nop())

	first, err := svc.Snapshot(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 0, first.TotalScore)

	users.user.TotalScore = 10
	cached, err := svc.Snapshot(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 0, cached.TotalScore, "warm cache serves the stored snapshot")

	_, err = svc.RecordCompletion(context.Background(), 1, models.Level{ID: 3, Points: 10}, fullPassReport())
	require.NoError(t, err)

	fresh, err := svc.Snapshot(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, 10, fresh.TotalScore, "first completion invalidates the snapshot cache")
}

func TestSnapshotUnknownUser(t *testing.T) {
	users := &stubUserRepo{userErr: gorm.ErrRecordNotFound}
	svc := NewProgressService(users, nil, 0, nil, zerolog.Nop())

	_, err := svc.Snapshot(context.Background(), 42)
	require.ErrorIs(t, err, ErrUserNotFound)
}

var _ repository.UserRepository = (*stubUserRepo)(nil)
