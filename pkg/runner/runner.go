package runner

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "quest",
		Subsystem: "runner",
		Name:      "run_duration_seconds",
		Help:      "Duration of sandboxed code runs",
		Buckets:   prometheus.DefBuckets,
	}, []string{"image"})

	runTimeouts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quest",
		Subsystem: "runner",
		Name:      "run_timeouts_total",
		Help:      "Number of runs that hit the timeout",
	}, []string{"image"})

	runFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "quest",
		Subsystem: "runner",
		Name:      "run_failures_total",
		Help:      "Number of runs that resulted in a sandbox error",
	}, []string{"image"})
)

// Executor runs a learner's code against a single test input inside a
// sandbox. The grading engine is agnostic to how the sandbox is implemented.
type Executor interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// Request describes one code run: the full source and the stdin fed to it.
type Request struct {
	Code    string
	Input   string
	Timeout time.Duration
}

// Result summarises the outcome of a single run.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
	TimedOut bool
}
