package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/span/internal/config"
	serrors "git.home.luguber.info/inful/span/internal/errors"
	"git.home.luguber.info/inful/span/internal/logfields"
	"git.home.luguber.info/inful/span/internal/metrics"
	"git.home.luguber.info/inful/span/internal/observability"
	"git.home.luguber.info/inful/span/internal/vfs"
)

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names, in execution order.
const (
	StageRemoveIgnored      StageName = "remove_ignored"
	StagePreRun             StageName = "pre_run"
	StageExtractPassthrough StageName = "extract_passthrough"
	StageRender             StageName = "render"
	StageMergePassthrough   StageName = "merge_passthrough"
)

// Stage is one step of the pipeline. It reads and replaces trees on the
// build state.
type Stage func(ctx context.Context, bs *BuildState) error

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// BuildState is the mutable state threaded through the stages of one build.
type BuildState struct {
	Config *config.Config

	// Tree is the working tree; each stage replaces it.
	Tree *vfs.Folder

	// Prepared is the working tree as it left the pre-run stage. Metadata
	// expansions enumerate it, so metadata files matched by passthrough
	// globs are still visible to the render stage.
	Prepared *vfs.Folder

	// Passthrough holds the files set aside for copying verbatim, without
	// the empty folders left over from filtering.
	Passthrough *vfs.Folder

	Timings map[StageName]time.Duration
}

func newBuildState(cfg *config.Config, source *vfs.Folder) *BuildState {
	return &BuildState{
		Config:  cfg,
		Tree:    source,
		Timings: make(map[StageName]time.Duration),
	}
}

// runStages executes stages in order and stops at the first failure, which
// is returned wrapped as a stage error.
func runStages(ctx context.Context, bs *BuildState, stages []StageDef, recorder metrics.Recorder) error {
	for _, st := range stages {
		name := string(st.Name)
		select {
		case <-ctx.Done():
			recorder.IncStageResult(name, metrics.ResultCanceled)
			return serrors.StageFailed(name, serrors.CategoryBuild, ctx.Err())
		default:
		}

		sctx := observability.WithStage(ctx, name)
		observability.DebugContext(sctx, "Stage started", logfields.Files(bs.Tree.Len()))
		t0 := time.Now()
		err := st.Fn(sctx, bs)
		dur := time.Since(t0)
		bs.Timings[st.Name] = dur
		recorder.ObserveStageDuration(name, dur)

		if err != nil {
			result := metrics.ResultFailed
			if ctx.Err() != nil {
				result = metrics.ResultCanceled
			}
			recorder.IncStageResult(name, result)
			observability.ErrorContext(sctx, "Stage failed", logfields.DurationMS(ms(dur)), logfields.Error(err))
			return serrors.StageFailed(name, classify(err), err)
		}
		recorder.IncStageResult(name, metrics.ResultSuccess)
		observability.InfoContext(sctx, "Stage complete",
			logfields.DurationMS(ms(dur)),
			logfields.Files(bs.Tree.Len()))
	}
	return nil
}

func stageRemoveIgnored(_ context.Context, bs *BuildState) error {
	tree, err := bs.Tree.Remove(bs.Config.Ignore)
	if err != nil {
		return err
	}
	bs.Tree = tree
	return nil
}

func stageExtractPassthrough(_ context.Context, bs *BuildState) error {
	bs.Prepared = bs.Tree
	pass, err := bs.Tree.Filter(bs.Config.Passthrough)
	if err != nil {
		return err
	}
	rest, err := bs.Tree.Remove(bs.Config.Passthrough)
	if err != nil {
		return err
	}
	bs.Passthrough = pass.Prune()
	bs.Tree = rest
	return nil
}

func stageMergePassthrough(_ context.Context, bs *BuildState) error {
	if bs.Passthrough == nil {
		return nil
	}
	bs.Tree = vfs.Merge(bs.Tree, outputLayout(bs.Passthrough))
	return nil
}

// outputLayout moves passthrough files below contents/ to the output root,
// next to the pages rendered from the same folder. Files outside contents/
// keep their input paths.
func outputLayout(pass *vfs.Folder) *vfs.Folder {
	contents, ok := pass.Folder(ContentsDir)
	if !ok {
		return pass
	}
	rest := pass.Clone()
	delete(rest.Folders, ContentsDir)
	return vfs.Merge(rest, contents.Rebase(""))
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
