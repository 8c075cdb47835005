package vfs

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
)

// Read loads a tree from p. A regular file is decoded as a snapshot written
// by [Folder.WriteSnapshot]; anything else is read as a directory.
func Read(fsys billy.Filesystem, p string) (*Folder, error) {
	if fi, err := fsys.Stat(p); err == nil && fi.Mode().IsRegular() {
		return ReadSnapshot(fsys, p)
	}
	return ReadDir(fsys, p)
}

// ReadDir recursively mirrors the directory dir. Only regular files and
// directories are supported; any other entry aborts the whole load.
func ReadDir(fsys billy.Filesystem, dir string) (*Folder, error) {
	return readDir(fsys, dir, "")
}

func readDir(fsys billy.Filesystem, dir, label string) (*Folder, error) {
	res := New(label)
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", dir, err)
	}
	for _, e := range entries {
		name := e.Name()
		p := fsys.Join(dir, name)
		switch {
		case e.IsDir():
			sub, err := readDir(fsys, p, path.Join(label, name))
			if err != nil {
				return nil, err
			}
			res.Folders[name] = sub
		case e.Mode().IsRegular():
			content, err := util.ReadFile(fsys, p)
			if err != nil {
				return nil, fmt.Errorf("could not read contents of %s: %w", p, err)
			}
			res.Files[name] = content
		default:
			return nil, fmt.Errorf("%w: %s (%s)", ErrUnsupportedEntry, p, e.Mode().Type())
		}
	}
	return res, nil
}

// ReadSnapshot decodes the snapshot file at p.
func ReadSnapshot(fsys billy.Filesystem, p string) (*Folder, error) {
	blob, err := util.ReadFile(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", p, err)
	}
	f, err := DecodeSnapshot(blob)
	if err != nil {
		return nil, fmt.Errorf("could not decode %s: %w", p, err)
	}
	return f, nil
}

// Write flushes the tree to dest. When dest is an existing regular file a
// single snapshot is written to it, otherwise the tree is materialized as a
// directory hierarchy below dest.
func (f *Folder) Write(fsys billy.Filesystem, dest string) error {
	if fi, err := fsys.Stat(dest); err == nil && fi.Mode().IsRegular() {
		return f.WriteSnapshot(fsys, dest)
	}
	return f.WriteDir(fsys, dest)
}

// WriteSnapshot encodes the tree into the file p, replacing its contents.
func (f *Folder) WriteSnapshot(fsys billy.Filesystem, p string) error {
	blob, err := EncodeSnapshot(f)
	if err != nil {
		return err
	}
	if err := util.WriteFile(fsys, p, blob, 0o644); err != nil {
		return fmt.Errorf("couldn't write to %s: %w", p, err)
	}
	return nil
}

// WriteDir materializes every folder and file below dest. Write failures are
// collected and reported together.
func (f *Folder) WriteDir(fsys billy.Filesystem, dest string) error {
	var errs []error
	f.writeDir(fsys, dest, &errs)
	if len(errs) > 0 {
		return fmt.Errorf("error(s) when writing folder to %s: %w", dest, errors.Join(errs...))
	}
	return nil
}

func (f *Folder) writeDir(fsys billy.Filesystem, dir string, errs *[]error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		*errs = append(*errs, fmt.Errorf("could not create dirs for %s: %w", dir, err))
		return
	}
	for _, name := range sortedKeys(f.Files) {
		target := fsys.Join(dir, filepath.FromSlash(name))
		if err := util.WriteFile(fsys, target, f.Files[name], 0o644); err != nil {
			*errs = append(*errs, &FileError{Path: path.Join(f.Path, name), Err: err})
		}
	}
	for _, name := range sortedKeys(f.Folders) {
		f.Folders[name].writeDir(fsys, fsys.Join(dir, name), errs)
	}
}
