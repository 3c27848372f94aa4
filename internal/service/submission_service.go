package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/jungle-quest/quest-api/internal/dto"
	"github.com/jungle-quest/quest-api/internal/grader"
	"github.com/jungle-quest/quest-api/internal/models"
	"github.com/jungle-quest/quest-api/internal/repository"
)

// ErrLevelNotFound indicates the level is missing or deactivated. Inactive
// levels are indistinguishable from missing ones to callers.
var ErrLevelNotFound = errors.New("level not found")

// ErrEmptyCode indicates the submission carried no code.
var ErrEmptyCode = errors.New("code is required")

// Evaluator grades code against a level's test cases.
type Evaluator interface {
	Evaluate(ctx context.Context, level models.Level, code string) grader.Report
}

// SubmissionService drives a submission through validation, evaluation,
// grading and, on a full pass, the recorded transition: ledger, badges and
// archive as one logical unit.
type SubmissionService interface {
	Submit(ctx context.Context, userID, levelID uint, payload dto.SubmitRequest) (dto.SubmitResponse, error)
	ListForLevel(ctx context.Context, userID, levelID uint) ([]dto.ArchivedSubmissionResponse, error)
	ListAll(ctx context.Context) ([]dto.ArchivedSubmissionResponse, error)
}

type submissionService struct {
	levels      repository.LevelRepository
	submissions repository.SubmissionRepository
	evaluator   Evaluator
	progress    ProgressService
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a submission service.
func NewSubmissionService(levelRepo repository.LevelRepository, submissionRepo repository.SubmissionRepository, evaluator Evaluator, progress ProgressService, validate *validator.Validate, logger zerolog.Logger) SubmissionService {
	return &submissionService{
		levels:      levelRepo,
		submissions: submissionRepo,
		evaluator:   evaluator,
		progress:    progress,
		validator:   validate,
		logger:      logger.With().Str("component", "submission_service").Logger(),
		now:         time.Now,
	}
}

func (s *submissionService) Submit(ctx context.Context, userID, levelID uint, payload dto.SubmitRequest) (dto.SubmitResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		submissionsGraded.WithLabelValues(stateRejected).Inc()
		return dto.SubmitResponse{}, err
	}
	if strings.TrimSpace(payload.Code) == "" {
		submissionsGraded.WithLabelValues(stateRejected).Inc()
		return dto.SubmitResponse{}, ErrEmptyCode
	}

	level, err := s.levels.GetByID(ctx, levelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			submissionsGraded.WithLabelValues(stateRejected).Inc()
			return dto.SubmitResponse{}, ErrLevelNotFound
		}
		return dto.SubmitResponse{}, err
	}
	if !level.IsActive {
		submissionsGraded.WithLabelValues(stateRejected).Inc()
		return dto.SubmitResponse{}, ErrLevelNotFound
	}

	report := s.evaluator.Evaluate(ctx, level, payload.Code)
	gradingDuration.Observe(float64(report.ExecutionTimeMs) / 1000)

	decision := grader.Decide(report, payload.DryRun)

	response := dto.SubmitResponse{
		Message: buildMessage(report, payload.DryRun),
		Submission: dto.SubmissionReportResponse{
			IsCorrect:       decision.IsCorrect,
			Output:          grader.Summary(report),
			ErrorMessage:    report.ErrorMessage,
			ExecutionTimeMs: report.ExecutionTimeMs,
			TestResults:     report.Results,
		},
	}

	if !decision.ShouldPersist {
		if payload.DryRun {
			submissionsGraded.WithLabelValues(stateDryRunDiscarded).Inc()
		} else {
			submissionsGraded.WithLabelValues(stateNotPassed).Inc()
		}
		return response, nil
	}

	outcome, err := s.progress.RecordCompletion(ctx, userID, level, report)
	if err != nil {
		return dto.SubmitResponse{}, fmt.Errorf("record completion: %w", err)
	}

	record, err := s.buildRecord(userID, level.ID, payload.Code, report)
	if err != nil {
		return dto.SubmitResponse{}, err
	}
	if err := s.submissions.Replace(ctx, &record); err != nil {
		return dto.SubmitResponse{}, fmt.Errorf("archive submission: %w", err)
	}

	submissionsGraded.WithLabelValues(stateRecorded).Inc()
	s.logger.Info().
		Uint("user_id", userID).
		Uint("level_id", level.ID).
		Bool("first_completion", outcome.FirstCompletion).
		Strs("badges", outcome.AwardedBadges).
		Msg("submission recorded")

	response.Submission.ID = record.ID
	snapshot := outcome.Snapshot
	response.User = &snapshot
	return response, nil
}

func (s *submissionService) buildRecord(userID, levelID uint, code string, report grader.Report) (models.Submission, error) {
	results, err := json.Marshal(report.Results)
	if err != nil {
		return models.Submission{}, fmt.Errorf("marshal test results: %w", err)
	}

	return models.Submission{
		UserID:          userID,
		LevelID:         levelID,
		Code:            code,
		Output:          grader.Summary(report),
		IsCorrect:       true,
		ExecutionTimeMs: report.ExecutionTimeMs,
		ErrorMessage:    report.ErrorMessage,
		TestResults:     results,
		SubmittedAt:     s.now(),
	}, nil
}

func (s *submissionService) ListForLevel(ctx context.Context, userID, levelID uint) ([]dto.ArchivedSubmissionResponse, error) {
	submissions, err := s.submissions.ListForUserLevel(ctx, userID, levelID, 10)
	if err != nil {
		return nil, err
	}
	return dto.NewArchivedSubmissionResponseSlice(submissions), nil
}

func (s *submissionService) ListAll(ctx context.Context) ([]dto.ArchivedSubmissionResponse, error) {
	submissions, err := s.submissions.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewArchivedSubmissionResponseSlice(submissions), nil
}

func buildMessage(report grader.Report, dryRun bool) string {
	if report.AllPassed {
		if dryRun {
			return "All test cases passed!"
		}
		return "All test cases passed! Submission saved."
	}
	return fmt.Sprintf("You passed %d/%d test cases. All must pass to complete this level.", report.PassedCount, report.TotalCount)
}
