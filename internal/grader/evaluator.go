package grader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jungle-quest/quest-api/internal/models"
	"github.com/jungle-quest/quest-api/pkg/runner"
)

// Evaluator runs a submission against a level's test cases and builds the
// evaluation report. It never touches user progress: grading a submission and
// deciding what the result means for the learner are kept separate.
type Evaluator struct {
	executor    runner.Executor
	caseTimeout time.Duration
	logger      zerolog.Logger
}

// NewEvaluator constructs an evaluator backed by the given executor.
func NewEvaluator(executor runner.Executor, caseTimeout time.Duration, logger zerolog.Logger) *Evaluator {
	return &Evaluator{
		executor:    executor,
		caseTimeout: caseTimeout,
		logger:      logger.With().Str("component", "evaluator").Logger(),
	}
}

// Evaluate runs every test case in level order. An executor failure on one
// case is recorded as that case failing and the batch continues; it never
// aborts the whole evaluation.
func (e *Evaluator) Evaluate(ctx context.Context, level models.Level, code string) Report {
	cases := level.GradingCases()
	results := make([]TestCaseResult, 0, len(cases))

	start := time.Now()
	for _, tc := range cases {
		result := TestCaseResult{
			Input:    tc.Input,
			Expected: tc.ExpectedOutput,
		}

		runResult, err := e.executor.Run(ctx, runner.Request{
			Code:    code,
			Input:   tc.Input,
			Timeout: e.caseTimeout,
		})

		switch {
		case err != nil && runResult.TimedOut:
			result.Actual = fmt.Sprintf("execution timed out after %s", e.caseTimeout)
		case err != nil:
			result.Actual = fmt.Sprintf("execution failed: %v", err)
			e.logger.Warn().Err(err).Uint("level_id", level.ID).Msg("executor failure on test case")
		case runResult.ExitCode != 0:
			diagnostic := strings.TrimSpace(runResult.Stderr)
			if diagnostic == "" {
				diagnostic = fmt.Sprintf("process exited with code %d", runResult.ExitCode)
			}
			result.Actual = diagnostic
		default:
			result.Actual = runResult.Stdout
			result.Passed = strings.TrimSpace(runResult.Stdout) == strings.TrimSpace(tc.ExpectedOutput)
		}

		results = append(results, result)
	}

	return newReport(results, time.Since(start).Milliseconds())
}

// Summary renders the per-case pass/fail text shown to the learner.
func Summary(report Report) string {
	lines := make([]string, 0, len(report.Results))
	for i, result := range report.Results {
		status := "Failed"
		if result.Passed {
			status = "Passed"
		}
		lines = append(lines, fmt.Sprintf("Test %d: %s", i+1, status))
	}
	return strings.Join(lines, "\n")
}
