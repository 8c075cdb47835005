// Package vfs holds a whole directory tree in memory and transforms it.
//
// A [Folder] mirrors one directory: its sub-directories and the raw bytes of
// its files. Transforms ([Folder.Map], [Folder.MapGlobs], [Folder.Remove],
// [Folder.Filter], [Merge]) never modify their input; they return a new tree
// that shares unchanged file contents with the original. File contents must
// therefore be treated as immutable by every caller.
//
// Paths inside a tree are slash separated and relative to the tree root.
// A node's Path is the join of its ancestors' names, the root's Path is "".
//
// Trees are loaded from and flushed to a [billy.Filesystem], either as a real
// directory hierarchy or as a single compressed snapshot file:
//
//	fsys := osfs.New(".")
//	tree, err := vfs.Read(fsys, "site")
//	if err != nil {
//	    return err
//	}
//	out, err := tree.Remove([]string{"**/*.tmp"})
//	if err != nil {
//	    return err
//	}
//	return out.Write(fsys, "public")
package vfs
