package grader

// CorrectThreshold is the pass ratio shown to learners as "correct". It is
// deliberately looser than the persistence gate: a submission passing 80% of
// cases reads as correct for partial-credit framing, but only a full pass
// counts as completing the level.
const CorrectThreshold = 0.8

// Decision is the grading policy's verdict on a report.
type Decision struct {
	IsCorrect     bool
	ShouldPersist bool
}

// Decide maps an evaluation report to the grading decision. Dry runs never
// persist, regardless of outcome.
func Decide(report Report, dryRun bool) Decision {
	return Decision{
		IsCorrect:     report.PercentPassed >= CorrectThreshold,
		ShouldPersist: report.AllPassed && !dryRun,
	}
}
