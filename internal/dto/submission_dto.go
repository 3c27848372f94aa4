package dto

import (
	"encoding/json"

	"github.com/jungle-quest/quest-api/internal/grader"
	"github.com/jungle-quest/quest-api/internal/models"
)

// SubmitRequest is the payload for submitting code against a level. DryRun
// evaluations return a full report but never touch progress or the archive.
type SubmitRequest struct {
	Code   string `json:"code" validate:"required,min=1"`
	DryRun bool   `json:"dry_run"`
}

// SubmissionReportResponse describes the graded submission in the response.
type SubmissionReportResponse struct {
	ID              uint                    `json:"id,omitempty"`
	IsCorrect       bool                    `json:"is_correct"`
	Output          string                  `json:"output"`
	ErrorMessage    string                  `json:"error_message"`
	ExecutionTimeMs int64                   `json:"execution_time_ms"`
	TestResults     []grader.TestCaseResult `json:"test_results"`
}

// SubmitResponse is the full evaluation response. User is present only when
// the submission was recorded against the learner's progress.
type SubmitResponse struct {
	Message    string                   `json:"message"`
	Submission SubmissionReportResponse `json:"submission"`
	User       *UserSnapshotResponse    `json:"user,omitempty"`
}

// ArchivedSubmissionResponse exposes an archived submission row.
type ArchivedSubmissionResponse struct {
	ID              uint                    `json:"id"`
	UserID          uint                    `json:"user_id"`
	LevelID         uint                    `json:"level_id"`
	Code            string                  `json:"code"`
	Output          string                  `json:"output"`
	IsCorrect       bool                    `json:"is_correct"`
	ExecutionTimeMs int64                   `json:"execution_time_ms"`
	ErrorMessage    string                  `json:"error_message"`
	TestResults     []grader.TestCaseResult `json:"test_results"`
	SubmittedAt     string                  `json:"submitted_at"`
}

// NewArchivedSubmissionResponse builds a response DTO from a model.
func NewArchivedSubmissionResponse(submission models.Submission) ArchivedSubmissionResponse {
	var results []grader.TestCaseResult
	if len(submission.TestResults) > 0 {
		// Stored results are engine-written JSON; a decode failure leaves the
		// field empty rather than failing the read.
		_ = json.Unmarshal(submission.TestResults, &results)
	}

	return ArchivedSubmissionResponse{
		ID:              submission.ID,
		UserID:          submission.UserID,
		LevelID:         submission.LevelID,
		Code:            submission.Code,
		Output:          submission.Output,
		IsCorrect:       submission.IsCorrect,
		ExecutionTimeMs: submission.ExecutionTimeMs,
		ErrorMessage:    submission.ErrorMessage,
		TestResults:     results,
		SubmittedAt:     submission.SubmittedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// NewArchivedSubmissionResponseSlice converts a slice of submissions.
func NewArchivedSubmissionResponseSlice(submissions []models.Submission) []ArchivedSubmissionResponse {
	responses := make([]ArchivedSubmissionResponse, 0, len(submissions))
	for _, submission := range submissions {
		responses = append(responses, NewArchivedSubmissionResponse(submission))
	}
	return responses
}
