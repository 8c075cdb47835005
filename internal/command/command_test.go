package command

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/span/internal/workspace"
)

func requireTool(t *testing.T, name string) {
	t.Helper()
	if _, err := exec.LookPath(name); err != nil {
		t.Skipf("%s not available: %v", name, err)
	}
}

func TestSplit(t *testing.T) {
	require.Equal(t, []string{"pandoc", "--to", "html5"}, Split("  pandoc  --to\thtml5\n"))
	require.Empty(t, Split("   "))
}

func TestRunPipesStdin(t *testing.T) {
	requireTool(t, "cat")
	res, err := NewRunner("").Run(context.Background(), []string{"cat"}, []byte("hello"))
	require.NoError(t, err)
	require.True(t, res.Success())
	require.Equal(t, "hello", string(res.Stdout))
	require.Empty(t, res.Stderr)
}

func TestRunLargeInputDoesNotDeadlock(t *testing.T) {
	requireTool(t, "cat")
	input := bytes.Repeat([]byte("0123456789abcdef"), 1<<16)
	res, err := NewRunner("").Run(context.Background(), []string{"cat"}, input)
	require.NoError(t, err)
	require.Equal(t, input, res.Stdout)
}

func TestRunReportsExitStatusAndStderr(t *testing.T) {
	requireTool(t, "sh")
	res, err := NewRunner("").Run(context.Background(), []string{"sh", "-c", "echo oops >&2; exit 3"}, nil)
	require.NoError(t, err)
	require.False(t, res.Success())
	require.Equal(t, 3, res.ExitCode)
	require.Equal(t, "oops\n", string(res.Stderr))
}

func TestRunTempFiles(t *testing.T) {
	requireTool(t, "cp")
	tmp := t.TempDir()
	r := &Runner{TempDir: tmp}

	res, err := r.Run(context.Background(), Split("cp %i %o"), []byte("via files"))
	require.NoError(t, err)
	require.Equal(t, "via files", string(res.Stdout))

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	require.Empty(t, entries, "workspace must be removed after the run")
}

func TestRunInputFileOnly(t *testing.T) {
	requireTool(t, "cat")
	tmp := t.TempDir()
	res, err := (&Runner{TempDir: tmp}).Run(context.Background(), Split("cat %i"), []byte("from file"))
	require.NoError(t, err)
	require.Equal(t, "from file", string(res.Stdout))
}

func TestRunWorkspaceRemovedOnFailure(t *testing.T) {
	requireTool(t, "sh")
	tmp := t.TempDir()
	res, err := (&Runner{TempDir: tmp}).Run(context.Background(), []string{"sh", "-c", "exit 1", "%i"}, nil)
	require.NoError(t, err)
	require.Equal(t, 1, res.ExitCode)

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestRunWorkingDirectory(t *testing.T) {
	requireTool(t, "cat")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/data.txt", []byte("local"), 0o600))

	res, err := NewRunner(dir).Run(context.Background(), []string{"cat", "data.txt"}, nil)
	require.NoError(t, err)
	require.Equal(t, "local", string(res.Stdout))
}

func TestRunErrors(t *testing.T) {
	_, err := NewRunner("").Run(context.Background(), nil, nil)
	require.ErrorIs(t, err, ErrEmptyCommand)

	_, err = NewRunner("").Run(context.Background(), []string{"definitely-not-a-real-binary-span"}, nil)
	require.ErrorIs(t, err, ErrStart)
}

func TestTempFilesRequireCreatedWorkspace(t *testing.T) {
	ws := workspace.NewManager(t.TempDir())
	_, _, err := tempFiles(ws)
	require.ErrorIs(t, err, workspace.ErrNotCreated)

	require.NoError(t, ws.Create())
	t.Cleanup(func() { _ = ws.Cleanup() })
	in, out, err := tempFiles(ws)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(ws.GetPath(), "stdin"), in)
	require.Equal(t, filepath.Join(ws.GetPath(), "stdout"), out)
}
