package commands

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/stretchr/testify/require"

	serrors "git.home.luguber.info/inful/span/internal/errors"
	"git.home.luguber.info/inful/span/internal/vfs"
)

// renderScript writes an executable that copies stdin to stdout and ignores
// its arguments, standing in for the renderer.
func renderScript(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "render.sh")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\nexec cat\n"), 0o755))
	return p
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for p, c := range files {
		full := filepath.Join(dir, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte(c), 0o600))
	}
}

func siteDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"span.yml":               "renderer: " + renderScript(t) + "\npassthrough:\n  - \"static/**\"\n",
		"contents/en/index.md":   "# Home $%%{badge(label: new)}",
		"templates/default.html": "$body$",
		"snippets/badge.html":    "[$%{label}]",
		"static/site.css":        "body{}",
	})
	return dir
}

func readTree(t *testing.T, dir string) map[string]string {
	t.Helper()
	tree, err := vfs.Read(osfs.New(dir), ".")
	require.NoError(t, err)
	res := map[string]string{}
	require.NoError(t, tree.Walk(func(f vfs.File) error {
		res[f.Path] = string(f.Content)
		return nil
	}))
	return res
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		env     string
		verbose bool
		want    slog.Level
	}{
		{"", false, slog.LevelInfo},
		{"", true, slog.LevelDebug},
		{"warn", true, slog.LevelWarn},
		{"ERROR", false, slog.LevelError},
		{"debug", false, slog.LevelDebug},
		{"bogus", true, slog.LevelDebug},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(LogLevelEnv, tt.env)
			require.Equal(t, tt.want, parseLogLevel(tt.verbose))
		})
	}
}

func TestBuildWritesOutputDirectory(t *testing.T) {
	dir := siteDir(t)
	out := filepath.Join(dir, "output")
	root := &CLI{Config: "span.yml"}

	require.NoError(t, (&BuildCmd{Input: dir, Output: out}).Run(&Global{}, root))
	require.Equal(t, map[string]string{
		"en/index.html":   "# Home [new]",
		"static/site.css": "body{}",
	}, readTree(t, out))

	// A second build neither reads the previous output back nor keeps
	// stale files.
	require.NoError(t, os.Remove(filepath.Join(dir, "static", "site.css")))
	require.NoError(t, (&BuildCmd{Input: dir, Output: out}).Run(&Global{}, root))
	require.Equal(t, map[string]string{"en/index.html": "# Home [new]"}, readTree(t, out))
}

func TestBuildSnapshotRoundTrip(t *testing.T) {
	dir := siteDir(t)
	snap := filepath.Join(t.TempDir(), "site.snap")
	require.NoError(t, os.WriteFile(snap, nil, 0o600))
	root := &CLI{Config: "span.yml"}

	require.NoError(t, newBuildRun(root, dir, snap).Execute(context.Background()))

	tree, err := vfs.Read(osfs.New(filepath.Dir(snap)), filepath.Base(snap))
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"en/index.html", "static/site.css"}, tree.Paths())
}

func TestBuildWritesMetricsFile(t *testing.T) {
	dir := siteDir(t)
	metricsFile := filepath.Join(t.TempDir(), "span.prom")
	root := &CLI{Config: "span.yml", MetricsFile: metricsFile}

	require.NoError(t, newBuildRun(root, dir, filepath.Join(t.TempDir(), "out")).Execute(context.Background()))
	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	require.Contains(t, string(data), "span_build_duration_seconds")
	require.Contains(t, string(data), `stage="render"`)
}

func TestBuildErrors(t *testing.T) {
	t.Run("missing config", func(t *testing.T) {
		dir := t.TempDir()
		err := newBuildRun(&CLI{Config: "span.yml"}, dir, filepath.Join(dir, "out")).Execute(context.Background())
		require.True(t, serrors.IsCategory(err, serrors.CategoryConfig))
	})
	t.Run("missing input", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nope")
		err := newBuildRun(&CLI{Config: "span.yml"}, dir, filepath.Join(t.TempDir(), "out")).Execute(context.Background())
		require.True(t, serrors.IsCategory(err, serrors.CategoryIO))
	})
	t.Run("output over input", func(t *testing.T) {
		dir := siteDir(t)
		err := newBuildRun(&CLI{Config: "span.yml"}, dir, dir).Execute(context.Background())
		require.True(t, serrors.IsCategory(err, serrors.CategoryConfig))
		require.FileExists(t, filepath.Join(dir, "span.yml"))
	})
	t.Run("missing template", func(t *testing.T) {
		dir := siteDir(t)
		require.NoError(t, os.Remove(filepath.Join(dir, "templates", "default.html")))
		err := newBuildRun(&CLI{Config: "span.yml"}, dir, filepath.Join(t.TempDir(), "out")).Execute(context.Background())
		require.True(t, serrors.IsCategory(err, serrors.CategoryStructure))
	})
}

func TestExcludeDir(t *testing.T) {
	tree := vfs.New("")
	require.NoError(t, tree.Insert("a/out/x.html", nil))
	require.NoError(t, tree.Insert("a/keep.md", nil))

	excludeDir(tree, "a/out")
	excludeDir(tree, "missing/out")
	require.Equal(t, []string{"a/keep.md"}, tree.Paths())
}

func TestInitWritesConfig(t *testing.T) {
	dir := t.TempDir()
	root := &CLI{Config: "span.yml"}

	require.NoError(t, (&InitCmd{Dir: dir}).Run(&Global{}, root))
	require.FileExists(t, filepath.Join(dir, "span.yml"))
	require.Error(t, (&InitCmd{Dir: dir}).Run(&Global{}, root))
	require.NoError(t, (&InitCmd{Dir: dir, Force: true}).Run(&Global{}, root))
}
