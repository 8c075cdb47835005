package vfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustTree(t *testing.T, files map[string]string) *Folder {
	t.Helper()
	f := New("")
	for p, content := range files {
		require.NoError(t, f.Insert(p, []byte(content)))
	}
	return f
}

func TestInsertCreatesLabelledFolders(t *testing.T) {
	f := mustTree(t, map[string]string{"a/b/c.txt": "x"})

	a, ok := f.Folder("a")
	require.True(t, ok)
	require.Equal(t, "a", a.Path)
	b, ok := a.Folder("b")
	require.True(t, ok)
	require.Equal(t, "a/b", b.Path)
	require.Equal(t, []byte("x"), b.Files["c.txt"])
}

func TestInsertRejectsInvalidPaths(t *testing.T) {
	f := New("")
	for _, p := range []string{"", ".", "..", "../x", "/abs"} {
		require.ErrorIs(t, f.Insert(p, nil), ErrInvalidPath, p)
	}
}

func TestWalkOrder(t *testing.T) {
	f := mustTree(t, map[string]string{
		"z.txt":     "",
		"a.txt":     "",
		"sub/b.txt": "",
		"sub/a.txt": "",
		"abc/x.txt": "",
	})
	require.Equal(t, []string{"a.txt", "z.txt", "abc/x.txt", "sub/a.txt", "sub/b.txt"}, f.Paths())
	require.Equal(t, 5, f.Len())
}

func TestRebase(t *testing.T) {
	f := mustTree(t, map[string]string{"a/b.txt": "b"})
	sub, _ := f.Folder("a")

	rebased := sub.Rebase("")
	require.Equal(t, []string{"b.txt"}, rebased.Paths())
	require.Equal(t, "a", sub.Path, "rebase must not touch the source")
}

func TestCloneIsIndependent(t *testing.T) {
	f := mustTree(t, map[string]string{"a/b.txt": "b"})
	c := f.Clone()
	require.NoError(t, c.Insert("a/new.txt", nil))

	require.True(t, Equal(f, mustTree(t, map[string]string{"a/b.txt": "b"})))
	require.Equal(t, 2, c.Len())
}

func TestStem(t *testing.T) {
	tests := []struct {
		name, want string
	}{
		{"page.html", "page"},
		{"archive.tar.gz", "archive.tar"},
		{"README", "README"},
		{".bashrc", ".bashrc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Stem(tt.name))
		})
	}
}

func TestEqual(t *testing.T) {
	a := mustTree(t, map[string]string{"x/y.txt": "1"})
	b := mustTree(t, map[string]string{"x/y.txt": "1"})
	require.True(t, Equal(a, b))

	require.NoError(t, b.Insert("x/y.txt", []byte("2")))
	require.False(t, Equal(a, b))

	c := mustTree(t, map[string]string{"x/y.txt": "1"})
	c.Folders["empty"] = New("empty")
	require.False(t, Equal(a, c))
}

func TestPruneDropsEmptyFolders(t *testing.T) {
	f := mustTree(t, map[string]string{"keep/a.txt": "a"})
	f.Folders["empty"] = New("empty")
	f.Folders["empty"].Folders["deeper"] = New("empty/deeper")

	p := f.Prune()
	require.Equal(t, []string{"keep"}, sortedKeys(p.Folders))
	require.Equal(t, []string{"keep/a.txt"}, p.Paths())
	require.Contains(t, f.Folders, "empty")
}
