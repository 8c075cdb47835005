package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/go-git/go-billy/v5/osfs"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/span/internal/build"
	"git.home.luguber.info/inful/span/internal/command"
	"git.home.luguber.info/inful/span/internal/config"
	serrors "git.home.luguber.info/inful/span/internal/errors"
	"git.home.luguber.info/inful/span/internal/logfields"
	"git.home.luguber.info/inful/span/internal/metrics"
	"git.home.luguber.info/inful/span/internal/vfs"
)

// LogLevelEnv overrides the log level chosen by --verbose.
const LogLevelEnv = "SPAN_LOG_LEVEL"

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config      string           `short:"c" help:"Configuration file path, relative to the input directory" default:"span.yml"`
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`
	MetricsFile string           `name:"metrics-file" help:"Write build metrics in Prometheus text format to this file" type:"path"`

	Build BuildCmd `cmd:"" help:"Build the site from an input directory or snapshot"`
	Watch WatchCmd `cmd:"" help:"Build, then rebuild whenever the input directory changes"`
	Init  InitCmd  `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLogLevel(c.Verbose)}))
	slog.SetDefault(logger)
	return nil
}

// parseLogLevel maps --verbose and SPAN_LOG_LEVEL to a level. A valid
// environment value wins over the flag.
func parseLogLevel(verbose bool) slog.Level {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv(LogLevelEnv))) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return level
}

// source describes where a build reads from.
type source struct {
	// WorkDir is where commands run and the config is resolved.
	WorkDir string
	// Name is the input below WorkDir: "." for a directory input, the file
	// name for a snapshot.
	Name string
}

func (s source) isSnapshot() bool { return s.Name != "." }

func resolveSource(input string) (source, error) {
	abs, err := filepath.Abs(input)
	if err != nil {
		return source{}, serrors.ReadFailed(input, serrors.CategoryIO, err)
	}
	fi, err := os.Stat(abs)
	if err != nil {
		return source{}, serrors.ReadFailed(input, serrors.CategoryIO, err)
	}
	if fi.Mode().IsRegular() {
		return source{WorkDir: filepath.Dir(abs), Name: filepath.Base(abs)}, nil
	}
	return source{WorkDir: abs, Name: "."}, nil
}

func resolveConfigPath(configPath, workDir string) string {
	if filepath.IsAbs(configPath) {
		return configPath
	}
	return filepath.Join(workDir, configPath)
}

// buildRun is one invocation of the pipeline from disk to disk.
type buildRun struct {
	Input       string
	Output      string
	ConfigPath  string
	MetricsFile string
}

func newBuildRun(root *CLI, input, output string) buildRun {
	return buildRun{Input: input, Output: output, ConfigPath: root.Config, MetricsFile: root.MetricsFile}
}

// Execute loads the input, runs the pipeline and writes the output.
func (r buildRun) Execute(ctx context.Context) error {
	src, err := resolveSource(r.Input)
	if err != nil {
		return err
	}
	output, err := filepath.Abs(r.Output)
	if err != nil {
		return serrors.WriteFailed(r.Output, err)
	}
	if !src.isSnapshot() && contains(output, src.WorkDir) {
		return serrors.ValidationFailed("output", fmt.Sprintf("%s would delete the input directory %s", r.Output, r.Input))
	}

	cfg, err := config.Load(resolveConfigPath(r.ConfigPath, src.WorkDir))
	if err != nil {
		return err
	}

	tree, err := vfs.Read(osfs.New(src.WorkDir), src.Name)
	if err != nil {
		category := serrors.CategoryIO
		if errors.Is(err, vfs.ErrUnsupportedEntry) {
			category = serrors.CategoryStructure
		}
		return serrors.ReadFailed(r.Input, category, err)
	}
	if !src.isSnapshot() {
		if rel, err := filepath.Rel(src.WorkDir, output); err == nil && !strings.HasPrefix(rel, "..") {
			excludeDir(tree, filepath.ToSlash(rel))
		}
	}

	var (
		recorder metrics.Recorder = metrics.NoopRecorder{}
		registry *prom.Registry
	)
	if r.MetricsFile != "" {
		registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	svc := build.NewBuildService(command.NewRunner(src.WorkDir)).WithRecorder(recorder)
	result, buildErr := svc.Run(ctx, build.BuildRequest{Config: cfg, Source: tree})

	if registry != nil {
		if err := metrics.WriteTextfile(registry, r.MetricsFile); err != nil {
			slog.Warn("Failed to write metrics", logfields.Path(r.MetricsFile), logfields.Error(err))
		}
	}
	if buildErr != nil {
		return buildErr
	}

	if err := writeOutput(result.Output, output); err != nil {
		return err
	}
	slog.Info("Output written", logfields.Path(r.Output), logfields.Files(result.FilesOut))
	return nil
}

// writeOutput replaces output with the tree. An existing regular file
// receives a snapshot; anything else is deleted and recreated as a
// directory.
func writeOutput(tree *vfs.Folder, output string) error {
	if fi, err := os.Stat(output); err == nil && fi.Mode().IsRegular() {
		if err := tree.WriteSnapshot(osfs.New(filepath.Dir(output)), filepath.Base(output)); err != nil {
			return serrors.WriteFailed(output, err)
		}
		return nil
	}
	if err := os.RemoveAll(output); err != nil {
		return serrors.WriteFailed(output, fmt.Errorf("could not delete previous output: %w", err))
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return serrors.WriteFailed(output, fmt.Errorf("could not create output directory: %w", err))
	}
	if err := tree.WriteDir(osfs.New(output), "."); err != nil {
		return serrors.WriteFailed(output, err)
	}
	return nil
}

// excludeDir drops the folder at rel (slash separated) from tree, so a
// previous output inside the input directory is not read back as input.
func excludeDir(tree *vfs.Folder, rel string) {
	if rel == "." || rel == "" {
		return
	}
	parts := strings.Split(rel, "/")
	node := tree
	for _, p := range parts[:len(parts)-1] {
		next, ok := node.Folder(p)
		if !ok {
			return
		}
		node = next
	}
	delete(node.Folders, parts[len(parts)-1])
}

// contains reports whether dir is p or lies below it.
func contains(p, dir string) bool {
	rel, err := filepath.Rel(p, dir)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
