package vfs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFind(t *testing.T) {
	templates := mustTree(t, map[string]string{
		"default.html":        "root",
		"a/default.html":      "a",
		"a/b/post.html":       "post",
		"a/b/post.tex":        "tex",
		"blog/default.html":   "blog",
		"blog/2024/note.html": "note",
	})

	tests := []struct {
		name    string
		target  string
		want    string
		found   bool
		content string
	}{
		{"exact", "a/b/post", "a/b/post.html", true, "post"},
		{"upward fallback", "a/b/default", "a/default.html", true, "a"},
		{"root fallback", "x/y/default", "default.html", true, "root"},
		{"partial descent", "blog/2024/default", "blog/default.html", true, "blog"},
		{"extension ignored", "a/b/post.md", "a/b/post.html", true, "post"},
		{"missing", "a/b/nothing", "", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, content, ok := templates.Find(tt.target)
			require.Equal(t, tt.found, ok)
			require.Equal(t, tt.want, p)
			if tt.found {
				require.Equal(t, tt.content, string(content))
			}
		})
	}
}
