package vfs

import (
	"fmt"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func genTree(names []string, contents []string) *Folder {
	f := New("")
	for i, n := range names {
		p := fmt.Sprintf("d%d/%s.txt", i%3, n)
		if i%2 == 0 {
			p = n + ".txt"
		}
		_ = f.Insert(p, []byte(contents[i%len(contents)]))
	}
	return f
}

func TestTreeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(1234)
	parameters.MinSuccessfulTests = 100
	if testing.Short() {
		parameters.MinSuccessfulTests = 20
	}

	properties := gopter.NewProperties(parameters)

	names := gen.SliceOf(gen.Identifier())
	contents := gen.SliceOfN(4, gen.AlphaString())

	properties.Property("map with identity preserves the tree", prop.ForAll(
		func(ns []string, cs []string) bool {
			f := genTree(ns, cs)
			out, err := f.Map(Keep)
			return err == nil && Equal(f, out)
		},
		names, contents,
	))

	properties.Property("remove and filter partition the files", prop.ForAll(
		func(ns []string, cs []string) bool {
			f := genTree(ns, cs)
			globs := []string{"d1/**", "*.txt"}
			removed, err := f.Remove(globs)
			if err != nil {
				return false
			}
			filtered, err := f.Filter(globs)
			if err != nil {
				return false
			}
			return removed.Len()+filtered.Len() == f.Len() && Equal(f, Merge(removed, filtered))
		},
		names, contents,
	))

	properties.Property("directory round trip", prop.ForAll(
		func(ns []string, cs []string) bool {
			f := genTree(ns, cs)
			fs := memfs.New()
			if err := f.WriteDir(fs, "out"); err != nil {
				return false
			}
			got, err := ReadDir(fs, "out")
			return err == nil && Equal(f, got)
		},
		names, contents,
	))

	properties.Property("snapshot round trip", prop.ForAll(
		func(ns []string, cs []string) bool {
			f := genTree(ns, cs)
			blob, err := EncodeSnapshot(f)
			if err != nil {
				return false
			}
			got, err := DecodeSnapshot(blob)
			return err == nil && Equal(f, got)
		},
		names, contents,
	))

	properties.TestingRun(t)
}
