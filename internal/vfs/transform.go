package vfs

import (
	"errors"
	"path"
)

// MapFunc transforms one file. Returning a nil *File deletes the file;
// returning a different Path moves it (the path stays relative to the tree
// root and must remain below the folder being mapped).
type MapFunc func(File) (*File, error)

// Keep is a MapFunc that returns files unchanged.
func Keep(f File) (*File, error) {
	return &f, nil
}

// Drop is a MapFunc that deletes every file.
func Drop(File) (*File, error) {
	return nil, nil
}

// Map applies fn to every file of the tree and returns the resulting tree.
// The folder shape of f is preserved. Failures are collected over the whole
// tree and returned together, one [FileError] per failing file.
func (f *Folder) Map(fn MapFunc) (*Folder, error) {
	res := f.shape()
	var errs []error
	f.mapInto(res, fn, &errs)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return res, nil
}

func (f *Folder) mapInto(root *Folder, fn MapFunc, errs *[]error) {
	for _, name := range sortedKeys(f.Files) {
		p := path.Join(f.Path, name)
		out, err := fn(File{Path: p, Content: f.Files[name]})
		if err != nil {
			*errs = append(*errs, &FileError{Path: p, Err: err})
			continue
		}
		if out == nil {
			continue
		}
		rel, err := root.rel(out.Path)
		if err == nil {
			err = root.Insert(rel, out.Content)
		}
		if err != nil {
			*errs = append(*errs, &FileError{Path: p, Err: err})
		}
	}
	for _, name := range sortedKeys(f.Folders) {
		f.Folders[name].mapInto(root, fn, errs)
	}
}

// shape copies the folder hierarchy without any files.
func (f *Folder) shape() *Folder {
	res := New(f.Path)
	for name, sub := range f.Folders {
		res.Folders[name] = sub.shape()
	}
	return res
}

// MapGlobs dispatches files whose path matches any of globs to match and
// all other files to noMatch.
func (f *Folder) MapGlobs(globs []string, match, noMatch MapFunc) (*Folder, error) {
	set, err := CompileGlobs(globs)
	if err != nil {
		return nil, err
	}
	return f.Map(func(file File) (*File, error) {
		if set.Match(file.Path) {
			return match(file)
		}
		return noMatch(file)
	})
}

// Remove returns the tree without the files matching globs.
func (f *Folder) Remove(globs []string) (*Folder, error) {
	return f.MapGlobs(globs, Drop, Keep)
}

// Filter returns the tree with only the files matching globs.
func (f *Folder) Filter(globs []string) (*Folder, error) {
	return f.MapGlobs(globs, Keep, Drop)
}

// Collect returns the files matching globs keyed by their full path.
func (f *Folder) Collect(globs []string) (map[string][]byte, error) {
	set, err := CompileGlobs(globs)
	if err != nil {
		return nil, err
	}
	res := make(map[string][]byte)
	_ = f.Walk(func(file File) error {
		if set.Match(file.Path) {
			res[file.Path] = file.Content
		}
		return nil
	})
	return res, nil
}

// Merge joins two trees. Folders are the union of both; where both hold a
// file at the same path the content from y is used.
func Merge(x, y *Folder) *Folder {
	res := x.Clone()
	mergeInto(res, y)
	return res
}

func mergeInto(dst, src *Folder) {
	for name, content := range src.Files {
		dst.Files[name] = content
	}
	for name, sub := range src.Folders {
		d, ok := dst.Folders[name]
		if !ok {
			d = New(path.Join(dst.Path, name))
			dst.Folders[name] = d
		}
		mergeInto(d, sub)
	}
}
