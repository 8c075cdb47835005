package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	serrors "git.home.luguber.info/inful/span/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	p := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadFullDocument(t *testing.T) {
	p := writeConfig(t, t.TempDir(), `
ignore: ["**/.*"]
passthrough: ["contents/**.css"]
pre_run:
  - command: tidy -q
    files: ["contents/**.md"]
    error_on: stderr
    replace: false
  - command: cat %i
    files: ["**.txt"]
filters:
  - path: filters/toc.lua
    files: ["contents/en/**"]
extra_args: ["--toc"]
default_template: page
`)

	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, []string{"**/.*"}, cfg.Ignore)
	require.Equal(t, []string{"contents/**.css"}, cfg.Passthrough)
	require.Equal(t, []PreRun{
		{Command: "tidy -q", Files: []string{"contents/**.md"}, ErrorOn: ErrorOnStderr, Replace: false},
		{Command: "cat %i", Files: []string{"**.txt"}, ErrorOn: ErrorOnNone, Replace: true},
	}, cfg.PreRun)
	require.Equal(t, []Filter{{Path: "filters/toc.lua", Files: []string{"contents/en/**"}}}, cfg.Filters)
	require.Equal(t, []string{"--toc"}, cfg.ExtraArgs)
	require.Equal(t, "page", cfg.DefaultTemplate)
	require.Equal(t, DefaultRenderer, cfg.Renderer)
}

func TestParseEmptyDocumentAppliesDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	require.Equal(t, DefaultTemplate, cfg.DefaultTemplate)
	require.Equal(t, DefaultRenderer, cfg.Renderer)
}

func TestLoadExpandsEnvironmentFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SPAN_TEST_TEMPLATE=fromenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SPAN_TEST_TEMPLATE") })
	p := writeConfig(t, dir, "default_template: ${SPAN_TEST_TEMPLATE}\n")

	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "fromenv", cfg.DefaultTemplate)
}

func TestLoadProcessEnvironmentWins(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SPAN_TEST_RENDERER", "cat")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("SPAN_TEST_RENDERER=other\n"), 0o600))
	p := writeConfig(t, dir, "renderer: ${SPAN_TEST_RENDERER}\n")

	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "cat", cfg.Renderer)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "ignore: []\nunknown: 1\n"},
		{"syntax", "ignore: [\n"},
		{"bad policy", "pre_run:\n  - command: x\n    files: []\n    error_on: sometimes\n"},
		{"empty command", "pre_run:\n  - command: \"  \"\n    files: []\n"},
		{"bad glob", "ignore: [\"[a-\"]\n"},
		{"empty filter path", "filters:\n  - path: \"\"\n    files: []\n"},
		{"template path", "default_template: a/b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, t.TempDir(), tt.content))
			require.Error(t, err)
			require.True(t, serrors.IsCategory(err, serrors.CategoryConfig), err.Error())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), DefaultFileName))
	require.Error(t, err)
	require.True(t, serrors.IsCategory(err, serrors.CategoryConfig))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestInitWritesLoadableExample(t *testing.T) {
	p := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, Init(p, false))

	cfg, err := Load(p)
	require.NoError(t, err)
	require.Len(t, cfg.PreRun, 1)
	require.Equal(t, ErrorOnStatus, cfg.PreRun[0].ErrorOn)

	require.Error(t, Init(p, false), "existing file must not be overwritten")
	require.NoError(t, Init(p, true))
}
