package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/span/internal/config"
	"git.home.luguber.info/inful/span/internal/vfs"
)

// BuildService is the canonical interface for executing a build.
type BuildService interface {
	// Run executes the complete pipeline over req.Source and returns the
	// output tree in BuildResult.Output.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains all inputs required to execute a build.
type BuildRequest struct {
	// Config is the loaded configuration for this build.
	Config *config.Config

	// Source is the input tree. It is never modified.
	Source *vfs.Folder
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	// Status indicates overall build outcome.
	Status BuildStatus

	// BuildID identifies the build in logs.
	BuildID string

	// Output is the assembled output tree; nil unless Status is success.
	Output *vfs.Folder

	// FilesIn is the number of files in the source tree.
	FilesIn int

	// FilesOut is the number of files in the output tree.
	FilesOut int

	// StageDurations records the wall time of every stage that ran.
	StageDurations map[StageName]time.Duration

	// Duration is the total build execution time.
	Duration time.Duration

	// StartTime is when the build started.
	StartTime time.Time

	// EndTime is when the build completed.
	EndTime time.Time
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	// BuildStatusSuccess indicates the build completed successfully.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusFailed indicates the build encountered an error.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled indicates the build was cancelled.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusFailed || s == BuildStatusCancelled
}

// IsSuccess returns true if the build completed successfully.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess
}
