package build

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/span/internal/command"
	serrors "git.home.luguber.info/inful/span/internal/errors"
	"git.home.luguber.info/inful/span/internal/logfields"
	"git.home.luguber.info/inful/span/internal/metrics"
	"git.home.luguber.info/inful/span/internal/observability"
)

// DefaultBuildService is the standard implementation of BuildService.
type DefaultBuildService struct {
	executor command.Executor
	renderer Renderer
	recorder metrics.Recorder
}

// NewBuildService creates a DefaultBuildService running commands through
// executor. Unless WithRenderer is used, the renderer is a CommandRenderer
// built from the request's configuration on the same executor.
func NewBuildService(executor command.Executor) *DefaultBuildService {
	return &DefaultBuildService{
		executor: executor,
		recorder: metrics.NoopRecorder{},
	}
}

// WithExecutor replaces the executor used for pre-run commands.
func (s *DefaultBuildService) WithExecutor(executor command.Executor) *DefaultBuildService {
	s.executor = executor
	return s
}

// WithRenderer sets a fixed renderer (for testing).
func (s *DefaultBuildService) WithRenderer(r Renderer) *DefaultBuildService {
	s.renderer = r
	return s
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(r metrics.Recorder) *DefaultBuildService {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	s.recorder = r
	return s
}

// Stages returns the pipeline in execution order.
func (s *DefaultBuildService) Stages() []StageDef {
	return []StageDef{
		{Name: StageRemoveIgnored, Fn: stageRemoveIgnored},
		{Name: StagePreRun, Fn: s.stagePreRun},
		{Name: StageExtractPassthrough, Fn: stageExtractPassthrough},
		{Name: StageRender, Fn: s.stageRender},
		{Name: StageMergePassthrough, Fn: stageMergePassthrough},
	}
}

// Run executes the complete build pipeline.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	startTime := time.Now()
	result := &BuildResult{
		StartTime: startTime,
		BuildID:   uuid.NewString(),
	}
	ctx = observability.WithBuildID(ctx, result.BuildID)

	if req.Config == nil {
		return s.finish(ctx, result, serrors.Wrap(ErrConfigRequired, serrors.CategoryConfig, serrors.SeverityFatal, "invalid build request"))
	}
	if req.Source == nil {
		return s.finish(ctx, result, serrors.InternalError("invalid build request", ErrSourceRequired))
	}
	result.FilesIn = req.Source.Len()

	svc := *s
	if svc.renderer == nil {
		cr := NewCommandRenderer(req.Config.Renderer, req.Config.ExtraArgs, s.executor)
		cr.Recorder = s.recorder
		svc.renderer = cr
	}

	observability.InfoContext(ctx, "Build started", logfields.Files(result.FilesIn))
	bs := newBuildState(req.Config, req.Source)
	err := runStages(ctx, bs, svc.Stages(), s.recorder)
	result.StageDurations = bs.Timings
	if err == nil {
		result.Output = bs.Tree
		result.FilesOut = bs.Tree.Len()
	}
	return s.finish(ctx, result, err)
}

// finish stamps the result, records the outcome and logs it.
func (s *DefaultBuildService) finish(ctx context.Context, result *BuildResult, err error) (*BuildResult, error) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	s.recorder.ObserveBuildDuration(result.Duration)

	switch {
	case err == nil:
		result.Status = BuildStatusSuccess
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeSuccess)
		observability.InfoContext(ctx, "Build complete",
			logfields.Files(result.FilesOut),
			logfields.DurationMS(ms(result.Duration)))
		return result, nil
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		result.Status = BuildStatusCancelled
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeCanceled)
		observability.WarnContext(ctx, "Build cancelled", logfields.DurationMS(ms(result.Duration)))
	default:
		result.Status = BuildStatusFailed
		s.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
	}
	return result, err
}

var _ BuildService = (*DefaultBuildService)(nil)
