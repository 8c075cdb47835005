package vfs

import (
	"path"
	"strings"
)

// Find returns the "most matching" file for target, a path relative to f.
//
// The search descends along target's parent components for as long as the
// matching folders exist, then looks for a file whose stem equals target's
// stem. When nothing matches there, the immediate parent component is
// dropped (a/b/page becomes a/page) and the search is repeated, up to and
// including the root. Same-stem siblings are tried in lexical order.
//
// The returned path is relative to f.
func (f *Folder) Find(target string) (string, []byte, bool) {
	target = path.Clean(target)
	for {
		if p, content, ok := f.findAt(target); ok {
			return p, content, true
		}
		dir := path.Dir(target)
		if dir == "." || dir == "/" {
			return "", nil, false
		}
		target = path.Join(path.Dir(dir), path.Base(target))
	}
}

func (f *Folder) findAt(target string) (string, []byte, bool) {
	node := f
	track := ""
	if dir := path.Dir(target); dir != "." {
		for _, c := range strings.Split(dir, "/") {
			child, ok := node.Folders[c]
			if !ok {
				break
			}
			node = child
			track = path.Join(track, c)
		}
	}
	want := Stem(path.Base(target))
	for _, name := range sortedKeys(node.Files) {
		if Stem(name) == want {
			return path.Join(track, name), node.Files[name], true
		}
	}
	return "", nil, false
}
