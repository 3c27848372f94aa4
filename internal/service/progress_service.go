package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/jungle-quest/quest-api/internal/dto"
	"github.com/jungle-quest/quest-api/internal/events"
	"github.com/jungle-quest/quest-api/internal/grader"
	"github.com/jungle-quest/quest-api/internal/models"
	"github.com/jungle-quest/quest-api/internal/repository"
)

// ErrUserNotFound indicates the user account cannot be located.
var ErrUserNotFound = errors.New("user not found")

// RecordOutcome describes what a recorded completion changed.
type RecordOutcome struct {
	FirstCompletion bool
	AwardedBadges   []string
	Snapshot        dto.UserSnapshotResponse
}

// ProgressService is the progress ledger: it owns score, progress entries and
// badge grants, and applies them exactly once per qualifying submission.
type ProgressService interface {
	RecordCompletion(ctx context.Context, userID uint, level models.Level, report grader.Report) (RecordOutcome, error)
	Snapshot(ctx context.Context, userID uint) (dto.UserSnapshotResponse, error)
}

type progressService struct {
	users    repository.UserRepository
	cache    *redis.Client
	cacheTTL time.Duration
	events   *events.Publisher
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewProgressService constructs a progress service. cache may be nil.
func NewProgressService(userRepo repository.UserRepository, cache *redis.Client, cacheTTL time.Duration, publisher *events.Publisher, logger zerolog.Logger) ProgressService {
	return &progressService{
		users:    userRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
		events:   publisher,
		logger:   logger.With().Str("component", "progress_service").Logger(),
		tracer:   otel.Tracer("github.com/jungle-quest/quest-api/internal/service/progress"),
	}
}

// RecordCompletion applies the ledger transition for a fully passing,
// non-dry-run submission. Already-completed levels are a no-op for score and
// progress. Badge rules run only on first-time transitions.
func (s *progressService) RecordCompletion(ctx context.Context, userID uint, level models.Level, report grader.Report) (RecordOutcome, error) {
	spanCtx, span := s.tracer.Start(ctx, "progress.record_completion", trace.WithAttributes(
		attribute.Int("user.id", int(userID)),
		attribute.Int("level.id", int(level.ID)),
	))
	defer span.End()

	transition, err := s.appendWithRetry(spanCtx, userID, level.ID, level.Points)
	if err != nil {
		return RecordOutcome{}, err
	}

	outcome := RecordOutcome{FirstCompletion: transition.Appended}

	if transition.Appended {
		outcome.AwardedBadges = s.applyBadgeRules(spanCtx, userID, transition.CompletedCount, report)
		s.invalidateSnapshot(spanCtx, userID)
	}

	user, err := s.users.GetByID(spanCtx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RecordOutcome{}, ErrUserNotFound
		}
		return RecordOutcome{}, err
	}
	outcome.Snapshot = dto.NewUserSnapshotResponse(user)

	if transition.Appended {
		s.events.LevelCompleted(userID, level.ID, level.Points, user.TotalScore)
		s.logger.Info().
			Uint("user_id", userID).
			Uint("level_id", level.ID).
			Int("points", level.Points).
			Int64("completed_count", transition.CompletedCount).
			Msg("level completed")
	}

	return outcome, nil
}

// appendWithRetry retries the conditional append once when the storage layer
// reports a conflict; a conflict on the retry means another writer won the
// race, which is the idempotent already-completed outcome.
func (s *progressService) appendWithRetry(ctx context.Context, userID, levelID uint, points int) (repository.ProgressTransition, error) {
	transition, err := s.users.AppendProgress(ctx, userID, levelID, points)
	if err == nil {
		return transition, nil
	}

	s.logger.Warn().Err(err).Uint("user_id", userID).Uint("level_id", levelID).Msg("progress append conflicted, retrying")

	transition, err = s.users.AppendProgress(ctx, userID, levelID, points)
	if err == nil {
		return transition, nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ProgressTransition{Appended: false}, nil
	}
	return repository.ProgressTransition{}, err
}

// applyBadgeRules evaluates the declarative badge rules after a first-time
// completion. Every award is conditional on the badge not existing yet, so
// each rule is idempotent by badge name.
func (s *progressService) applyBadgeRules(ctx context.Context, userID uint, completedCount int64, report grader.Report) []string {
	var awarded []string

	if completedCount == 1 {
		awarded = s.award(ctx, userID, models.BadgeFirstSteps, awarded)
	}
	if completedCount == 5 {
		awarded = s.award(ctx, userID, models.BadgeExplorer, awarded)
	}
	if report.AllPassed {
		awarded = s.award(ctx, userID, models.BadgeTestCaseMaster, awarded)
	}

	return awarded
}

func (s *progressService) award(ctx context.Context, userID uint, name string, awarded []string) []string {
	granted, err := s.users.AwardBadge(ctx, userID, name, models.BadgeDescriptions[name])
	if err != nil {
		s.logger.Error().Err(err).Uint("user_id", userID).Str("badge", name).Msg("failed to award badge")
		return awarded
	}
	if !granted {
		return awarded
	}

	badgeAwards.WithLabelValues(name).Inc()
	s.events.BadgeAwarded(userID, name)
	s.logger.Info().Uint("user_id", userID).Str("badge", name).Msg("badge awarded")
	return append(awarded, name)
}

// Snapshot returns the user's progress view, served from the cache when warm.
func (s *progressService) Snapshot(ctx context.Context, userID uint) (dto.UserSnapshotResponse, error) {
	cacheKey := snapshotCacheKey(userID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var snapshot dto.UserSnapshotResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &snapshot); unmarshalErr == nil {
				s.logger.Debug().Uint("user_id", userID).Msg("progress snapshot cache hit")
				return snapshot, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read snapshot cache")
		}
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserSnapshotResponse{}, ErrUserNotFound
		}
		return dto.UserSnapshotResponse{}, err
	}

	snapshot := dto.NewUserSnapshotResponse(user)

	if s.cache != nil {
		if payload, marshalErr := json.Marshal(snapshot); marshalErr == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store snapshot cache")
			}
		}
	}

	return snapshot, nil
}

func (s *progressService) invalidateSnapshot(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, snapshotCacheKey(userID)).Err(); err != nil {
		s.logger.Warn().Err(err).Uint("user_id", userID).Msg("failed to invalidate snapshot cache")
	}
}

func snapshotCacheKey(userID uint) string {
	return fmt.Sprintf("progress:user:%d", userID)
}
