package grader

// TestCaseResult captures the outcome of running one test case. Results keep
// the level's test-case order.
type TestCaseResult struct {
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Passed   bool   `json:"passed"`
}

// Report summarises a full evaluation run for one submission.
type Report struct {
	Results         []TestCaseResult `json:"results"`
	PassedCount     int              `json:"passed_count"`
	TotalCount      int              `json:"total_count"`
	AllPassed       bool             `json:"all_passed"`
	PercentPassed   float64          `json:"percent_passed"`
	ExecutionTimeMs int64            `json:"execution_time_ms"`
	ErrorMessage    string           `json:"error_message"`
}

func newReport(results []TestCaseResult, executionTimeMs int64) Report {
	passed := 0
	for _, result := range results {
		if result.Passed {
			passed++
		}
	}

	report := Report{
		Results:         results,
		PassedCount:     passed,
		TotalCount:      len(results),
		AllPassed:       len(results) > 0 && passed == len(results),
		ExecutionTimeMs: executionTimeMs,
	}
	if report.TotalCount > 0 {
		report.PercentPassed = float64(passed) / float64(report.TotalCount)
	}
	return report
}
