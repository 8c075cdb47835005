package snippets

import (
	"errors"
	"fmt"
	"maps"
	"path"
	"slices"
	"strings"
	"unicode/utf8"

	"git.home.luguber.info/inful/span/internal/frontmatter"
	"git.home.luguber.info/inful/span/internal/vfs"
)

// instanceSeparator joins the instances of a metadata expansion.
const instanceSeparator = "\n\n"

// Engine expands placeholders against a snippets tree. Source is the whole
// input tree, used to enumerate metadata directories.
type Engine struct {
	Snippets *vfs.Folder
	Source   *vfs.Folder
}

// NewEngine builds an engine for source, taking snippets from the folder
// named dir at the root of source. A missing snippets folder is treated as
// empty.
func NewEngine(source *vfs.Folder, dir string) *Engine {
	snippets, ok := source.Folder(dir)
	if !ok {
		snippets = vfs.New(dir)
	}
	return &Engine{Snippets: snippets, Source: source}
}

// ExpandFile replaces every expansion in the content of the file at p (a
// path relative to the source root). All failures of the file are returned
// together.
func (e *Engine) ExpandFile(p string, content []byte) ([]byte, error) {
	if !utf8.Valid(content) {
		return nil, ErrInvalidUTF8
	}
	src := string(content)
	toks, errs := Scan(src, Expansion)
	out, mapErrs := mapTokens(src, toks, func(tok Token) (string, error) {
		s, err := e.Expand(p, tok.Invocation)
		if err != nil {
			return "", fmt.Errorf("line %d: snippet %s: %w", tok.Line, tok.Invocation.Name, err)
		}
		return s, nil
	})
	errs = append(errs, mapErrs...)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return []byte(out), nil
}

// Expand resolves a single invocation referenced from the file at p.
func (e *Engine) Expand(p string, inv Invocation) (string, error) {
	target := lookupTarget(p, inv)
	_, content, ok := e.Snippets.Find(target)
	if !ok {
		return "", fmt.Errorf("%w: %s (looked up as %s)", ErrSnippetNotFound, inv.Name, target)
	}
	inv.Content = content

	if inv.Metadata == "" {
		return Resolve(inv.Content, inv.Args)
	}

	files, err := e.Source.Collect([]string{path.Join(inv.Metadata, "*")})
	if err != nil {
		return "", err
	}
	var (
		outs []string
		errs []error
	)
	for _, mp := range slices.Sorted(maps.Keys(files)) {
		params, err := metadataParams(files[mp], inv.Args)
		if err == nil {
			var s string
			s, err = Resolve(inv.Content, params)
			outs = append(outs, s)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("metadata %s: %w", mp, err))
		}
	}
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return strings.Join(outs, instanceSeparator), nil
}

// lookupTarget is the path searched in the snippets tree: the explicit
// lookup directory, or the referencing file's directory without its two
// leading segments (content root and language prefix).
func lookupTarget(p string, inv Invocation) string {
	if inv.Lookup != "" {
		return path.Join(inv.Lookup, inv.Name)
	}
	parts := strings.Split(path.Dir(p), "/")
	if len(parts) <= 2 {
		return inv.Name
	}
	return path.Join(append(parts[2:], inv.Name)...)
}

func metadataParams(content []byte, args Params) (Params, error) {
	fm, _, had, err := frontmatter.Extract(content)
	if err != nil {
		return nil, err
	}
	if !had {
		return args.With(nil), nil
	}
	fields, err := frontmatter.ParseYAML(fm)
	if err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	return args.With(fields), nil
}

// Resolve replaces every reference in content with its value from params.
func Resolve(content []byte, params Params) (string, error) {
	if !utf8.Valid(content) {
		return "", ErrInvalidUTF8
	}
	src := string(content)
	toks, errs := Scan(src, Reference)
	out, mapErrs := mapTokens(src, toks, func(tok Token) (string, error) {
		return params.Resolve(tok.Chain)
	})
	errs = append(errs, mapErrs...)
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return out, nil
}
