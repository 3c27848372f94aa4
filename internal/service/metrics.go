package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submissionsGraded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quest",
		Subsystem: "grading",
		Name:      "submissions_total",
		Help:      "Graded submissions by terminal state",
	}, []string{"state"})

	gradingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "quest",
		Subsystem: "grading",
		Name:      "evaluation_duration_seconds",
		Help:      "Wall-clock duration of full test-case batches",
		Buckets:   prometheus.DefBuckets,
	})

	badgeAwards = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quest",
		Subsystem: "progress",
		Name:      "badge_awards_total",
		Help:      "Badges newly awarded to users",
	}, []string{"badge"})
)

// Terminal submission states used as metric labels.
const (
	stateRecorded        = "recorded"
	stateDryRunDiscarded = "dry_run_discarded"
	stateNotPassed       = "not_passed"
	stateRejected        = "rejected"
)
