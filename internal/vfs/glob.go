package vfs

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// GlobSet is a compiled set of shell-style patterns. A path matches the set
// when it matches any pattern. '/' is a literal separator: '*' and '?' never
// cross it, '**' does. A "**/" segment also matches zero folders, so
// "**/*.md" matches "a.md".
type GlobSet struct {
	patterns []string
	globs    []glob.Glob
}

// CompileGlobs compiles every pattern eagerly so malformed patterns surface
// before any file is touched.
func CompileGlobs(patterns []string) (*GlobSet, error) {
	set := &GlobSet{
		patterns: patterns,
		globs:    make([]glob.Glob, 0, len(patterns)),
	}
	for _, p := range patterns {
		g, err := glob.Compile(zeroDirs(p), '/')
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidGlob, p, err)
		}
		set.globs = append(set.globs, g)
	}
	return set, nil
}

// Match reports whether p matches any pattern of the set.
func (s *GlobSet) Match(p string) bool {
	for _, g := range s.globs {
		if g.Match(p) {
			return true
		}
	}
	return false
}

// Patterns returns the source patterns.
func (s *GlobSet) Patterns() []string {
	return s.patterns
}

// zeroDirs rewrites each "**/" segment outside an alternative or a class to
// "{**/,}". gobwas requires at least one folder for "**/".
func zeroDirs(p string) string {
	var b strings.Builder
	depth := 0
	for i := 0; i < len(p); i++ {
		c := p[i]
		switch {
		case c == '\\' && i+1 < len(p):
			b.WriteString(p[i : i+2])
			i++
			continue
		case c == '[':
			if end := strings.IndexByte(p[i+1:], ']'); end >= 0 {
				b.WriteString(p[i : i+end+2])
				i += end + 1
				continue
			}
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case depth == 0 && (i == 0 || p[i-1] == '/') && strings.HasPrefix(p[i:], "**/"):
			b.WriteString("{**/,}")
			i += 2
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
