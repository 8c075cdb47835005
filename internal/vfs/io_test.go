package vfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/require"
)

func TestWriteReadDirRoundTrip(t *testing.T) {
	fs := memfs.New()
	f := mustTree(t, map[string]string{
		"index.html":   "<p>hi</p>",
		"a/b/c.txt":    "c",
		"a/empty.txt":  "",
		"static/x.css": "body{}",
	})
	f.Folders["nothing"] = New("nothing")

	require.NoError(t, f.Write(fs, "out"))
	got, err := Read(fs, "out")
	require.NoError(t, err)
	require.True(t, Equal(f, got))
}

func TestWriteToExistingFileWritesSnapshot(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "site.snap", nil, 0o644))
	f := mustTree(t, map[string]string{"a/b.txt": "b", "c.txt": ""})

	require.NoError(t, f.Write(fs, "site.snap"))
	fi, err := fs.Stat("site.snap")
	require.NoError(t, err)
	require.True(t, fi.Mode().IsRegular())

	got, err := Read(fs, "site.snap")
	require.NoError(t, err)
	require.True(t, Equal(f, got))
}

func TestReadDirRejectsSymlinks(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.txt"), []byte("x"), 0o644))
	if err := os.Symlink("real.txt", filepath.Join(dir, "link.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err := ReadDir(osfs.New(dir), ".")
	require.ErrorIs(t, err, ErrUnsupportedEntry)
}

func TestReadDirMissing(t *testing.T) {
	_, err := Read(memfs.New(), "nope")
	require.Error(t, err)
}

func TestDecodeSnapshotGarbage(t *testing.T) {
	_, err := DecodeSnapshot([]byte("definitely not zstd"))
	require.ErrorIs(t, err, ErrSnapshot)
}
