package build

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/span/internal/command"
	"git.home.luguber.info/inful/span/internal/config"
	"git.home.luguber.info/inful/span/internal/logfields"
	"git.home.luguber.info/inful/span/internal/metrics"
	"git.home.luguber.info/inful/span/internal/observability"
	"git.home.luguber.info/inful/span/internal/vfs"
)

const commandKindPreRun = "pre_run"

// stagePreRun applies every configured step in order. Each step sees the
// output of the previous one.
func (s *DefaultBuildService) stagePreRun(ctx context.Context, bs *BuildState) error {
	for i, step := range bs.Config.PreRun {
		argv := command.Split(step.Command)
		tree, err := bs.Tree.MapGlobs(step.Files, func(f vfs.File) (*vfs.File, error) {
			return s.runStep(ctx, step, argv, f)
		}, vfs.Keep)
		if err != nil {
			return fmt.Errorf("pre-run step %d (%s): %w", i+1, step.Command, err)
		}
		bs.Tree = tree
	}
	return nil
}

func (s *DefaultBuildService) runStep(ctx context.Context, step config.PreRun, argv []string, f vfs.File) (*vfs.File, error) {
	fctx := observability.WithFile(ctx, f.Path)
	start := time.Now()
	res, err := s.executor.Run(fctx, argv, f.Content)
	if err == nil {
		err = checkPolicy(step, res)
	}
	s.recorder.ObserveCommandDuration(commandKindPreRun, time.Since(start), err == nil)
	if err != nil {
		s.recorder.IncFileResult(string(StagePreRun), metrics.ResultFailed)
		return nil, err
	}
	s.recorder.IncFileResult(string(StagePreRun), metrics.ResultSuccess)
	observability.DebugContext(fctx, "Pre-run command applied",
		logfields.Command(step.Command),
		logfields.ExitCode(res.ExitCode))

	if step.Replace {
		f.Content = res.Stdout
	}
	return &f, nil
}

// checkPolicy fails a step according to its error_on policy. The offending
// output is quoted in the error.
func checkPolicy(step config.PreRun, res *command.Result) error {
	switch step.ErrorOn {
	case config.ErrorOnStdout:
		if len(res.Stdout) > 0 {
			return fmt.Errorf("%w: error from pre-run command (%s):\n  %s", ErrStepFailed, step.Command, res.Stdout)
		}
	case config.ErrorOnStderr:
		if len(res.Stderr) > 0 {
			return fmt.Errorf("%w: error from pre-run command (%s):\n  %s", ErrStepFailed, step.Command, res.Stderr)
		}
	case config.ErrorOnStatus:
		if !res.Success() {
			return fmt.Errorf("%w: pre-run command (%s) exited with status %d:\n  %s",
				ErrStepFailed, step.Command, res.ExitCode, res.Stderr)
		}
	}
	return nil
}
