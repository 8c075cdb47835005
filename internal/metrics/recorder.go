package metrics

import "time"

// ResultLabel enumerates stage and file result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultFailed   ResultLabel = "failed"
	ResultCanceled ResultLabel = "canceled"
)

// BuildOutcomeLabel is the final status of a build.
type BuildOutcomeLabel string

const (
	BuildOutcomeSuccess  BuildOutcomeLabel = "success"
	BuildOutcomeFailed   BuildOutcomeLabel = "failed"
	BuildOutcomeCanceled BuildOutcomeLabel = "canceled"
)

// Recorder defines observability hooks for build, stage and command metrics.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome BuildOutcomeLabel)
	// ObserveCommandDuration records one external command run; kind is
	// "pre_run" or "render".
	ObserveCommandDuration(kind string, d time.Duration, success bool)
	IncFileResult(stage string, result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration)         {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)                 {}
func (NoopRecorder) IncStageResult(string, ResultLabel)                 {}
func (NoopRecorder) IncBuildOutcome(BuildOutcomeLabel)                  {}
func (NoopRecorder) ObserveCommandDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncFileResult(string, ResultLabel)                  {}
