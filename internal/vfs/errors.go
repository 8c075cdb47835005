package vfs

import "errors"

var (
	// ErrUnsupportedEntry is returned when a directory contains something other
	// than regular files and directories (symlinks, devices, sockets).
	ErrUnsupportedEntry = errors.New("unsupported directory entry")
	// ErrInvalidPath indicates a path that cannot address a file inside a tree.
	ErrInvalidPath = errors.New("invalid path")
	// ErrPathEscapes indicates a mapped file was moved outside the mapped folder.
	ErrPathEscapes = errors.New("path escapes folder")
	// ErrInvalidGlob indicates a glob pattern that failed to compile.
	ErrInvalidGlob = errors.New("invalid glob pattern")
	// ErrSnapshot indicates a snapshot blob could not be encoded or decoded.
	ErrSnapshot = errors.New("snapshot codec failed")
)

// FileError attaches the path of the file being processed to an error.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return e.Path + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}
