package vfs

import (
	"bytes"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"
)

// Folder is an in-memory copy of a directory.
type Folder struct {
	Path    string
	Folders map[string]*Folder
	Files   map[string][]byte
}

// File is a single leaf as handed to a MapFunc. Path is relative to the tree root.
type File struct {
	Path    string
	Content []byte
}

// New creates an empty Folder labelled with the given path.
func New(p string) *Folder {
	return &Folder{
		Path:    p,
		Folders: make(map[string]*Folder),
		Files:   make(map[string][]byte),
	}
}

// Clone returns a copy of the folder structure. File contents are shared.
func (f *Folder) Clone() *Folder {
	res := New(f.Path)
	for name, content := range f.Files {
		res.Files[name] = content
	}
	for name, sub := range f.Folders {
		res.Folders[name] = sub.Clone()
	}
	return res
}

// Folder returns the direct child folder with the given name.
func (f *Folder) Folder(name string) (*Folder, bool) {
	sub, ok := f.Folders[name]
	return sub, ok
}

// Rebase returns a copy of the tree whose root is labelled p; every
// descendant label is rewritten to match.
func (f *Folder) Rebase(p string) *Folder {
	res := New(p)
	for name, content := range f.Files {
		res.Files[name] = content
	}
	for name, sub := range f.Folders {
		res.Folders[name] = sub.Rebase(path.Join(p, name))
	}
	return res
}

// Prune returns a copy of the tree without folders that hold no file at
// any depth. The root is always kept.
func (f *Folder) Prune() *Folder {
	res := New(f.Path)
	for name, content := range f.Files {
		res.Files[name] = content
	}
	for name, sub := range f.Folders {
		if p := sub.Prune(); len(p.Files) > 0 || len(p.Folders) > 0 {
			res.Folders[name] = p
		}
	}
	return res
}

// Len returns the number of files in the tree.
func (f *Folder) Len() int {
	n := len(f.Files)
	for _, sub := range f.Folders {
		n += sub.Len()
	}
	return n
}

// Walk calls fn for every file in the tree, in lexical order, files of a
// folder before its sub-folders. Walk stops at the first error.
func (f *Folder) Walk(fn func(File) error) error {
	for _, name := range sortedKeys(f.Files) {
		if err := fn(File{Path: path.Join(f.Path, name), Content: f.Files[name]}); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(f.Folders) {
		if err := f.Folders[name].Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// Paths lists the full path of every file in the tree in walk order.
func (f *Folder) Paths() []string {
	var res []string
	_ = f.Walk(func(file File) error {
		res = append(res, file.Path)
		return nil
	})
	return res
}

// Insert adds a file at p (relative to f), creating intermediate folders as
// needed and overwriting any existing content. Unlike the transforms, Insert
// modifies f; it is meant for building trees.
func (f *Folder) Insert(p string, content []byte) error {
	parts, err := splitPath(p)
	if err != nil {
		return err
	}
	node := f
	for _, c := range parts[:len(parts)-1] {
		child, ok := node.Folders[c]
		if !ok {
			child = New(path.Join(node.Path, c))
			node.Folders[c] = child
		}
		node = child
	}
	node.Files[parts[len(parts)-1]] = content
	return nil
}

// rel converts a tree path into a path relative to f.
func (f *Folder) rel(p string) (string, error) {
	if f.Path == "" {
		return p, nil
	}
	if rest, ok := strings.CutPrefix(p, f.Path+"/"); ok {
		return rest, nil
	}
	return "", fmt.Errorf("%w: %s is not below %s", ErrPathEscapes, p, f.Path)
}

// Equal reports whether two trees hold the same folders, file names and
// contents. Path labels are compared too.
func Equal(a, b *Folder) bool {
	if a.Path != b.Path || len(a.Files) != len(b.Files) || len(a.Folders) != len(b.Folders) {
		return false
	}
	for name, content := range a.Files {
		other, ok := b.Files[name]
		if !ok || !bytes.Equal(content, other) {
			return false
		}
	}
	for name, sub := range a.Folders {
		other, ok := b.Folders[name]
		if !ok || !Equal(sub, other) {
			return false
		}
	}
	return true
}

// Stem returns a file name without its extension. Names that only consist of
// an extension (".bashrc") are their own stem.
func Stem(name string) string {
	ext := path.Ext(name)
	if ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

func splitPath(p string) ([]string, error) {
	clean := path.Clean(p)
	if p == "" || clean == "." || clean == ".." || path.IsAbs(clean) || strings.HasPrefix(clean, "../") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return strings.Split(clean, "/"), nil
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
