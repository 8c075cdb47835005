package build

import (
	"context"
	"fmt"
	"path"
	"strings"

	"git.home.luguber.info/inful/span/internal/logfields"
	"git.home.luguber.info/inful/span/internal/metrics"
	"git.home.luguber.info/inful/span/internal/observability"
	"git.home.luguber.info/inful/span/internal/snippets"
	"git.home.luguber.info/inful/span/internal/vfs"
)

// Top-level folders of a source tree.
const (
	ContentsDir  = "contents"
	TemplatesDir = "templates"
	SnippetsDir  = "snippets"
)

// filterSet is a renderer filter with its compiled globs.
type filterSet struct {
	path  string
	globs *vfs.GlobSet
}

// stageRender renders every file below contents/ and replaces the working
// tree with the rendered tree, rebased so contents/ becomes the root.
func (s *DefaultBuildService) stageRender(ctx context.Context, bs *BuildState) error {
	contents, ok := bs.Tree.Folder(ContentsDir)
	if !ok {
		return fmt.Errorf("%w: could not find folder %q", ErrMissingFolder, ContentsDir)
	}
	templates, ok := bs.Tree.Folder(TemplatesDir)
	if !ok {
		return fmt.Errorf("%w: could not find folder %q", ErrMissingFolder, TemplatesDir)
	}

	filters := make([]filterSet, 0, len(bs.Config.Filters))
	for _, f := range bs.Config.Filters {
		set, err := vfs.CompileGlobs(f.Files)
		if err != nil {
			return fmt.Errorf("filter %s: %w", f.Path, err)
		}
		filters = append(filters, filterSet{path: f.Path, globs: set})
	}

	source := bs.Prepared
	if source == nil {
		source = bs.Tree
	}
	engine := snippets.NewEngine(source, SnippetsDir)

	rendered, err := contents.Map(func(f vfs.File) (*vfs.File, error) {
		return s.renderFile(ctx, bs, templates, engine, filters, f)
	})
	if err != nil {
		return err
	}
	bs.Tree = rendered.Rebase("")
	return nil
}

func (s *DefaultBuildService) renderFile(
	ctx context.Context,
	bs *BuildState,
	templates *vfs.Folder,
	engine *snippets.Engine,
	filters []filterSet,
	f vfs.File,
) (*vfs.File, error) {
	fctx := observability.WithFile(ctx, f.Path)

	tmpl, err := findTemplate(templates, f.Path, bs.Config.DefaultTemplate)
	if err != nil {
		s.recorder.IncFileResult(string(StageRender), metrics.ResultFailed)
		return nil, err
	}

	content, err := engine.ExpandFile(f.Path, f.Content)
	if err != nil {
		s.recorder.IncFileResult(string(StageRender), metrics.ResultFailed)
		return nil, err
	}

	req := RenderRequest{
		Path:     f.Path,
		Content:  content,
		Template: path.Join(TemplatesDir, tmpl),
	}
	for _, fl := range filters {
		if fl.globs.Match(f.Path) {
			req.Filters = append(req.Filters, fl.path)
		}
	}

	out, err := s.renderer.Render(fctx, req)
	if err != nil {
		s.recorder.IncFileResult(string(StageRender), metrics.ResultFailed)
		return nil, err
	}
	s.recorder.IncFileResult(string(StageRender), metrics.ResultSuccess)
	observability.DebugContext(fctx, "Rendered file",
		logfields.Template(req.Template),
		logfields.Count(len(req.Filters)))
	return &vfs.File{Path: outputPath(f.Path), Content: out}, nil
}

// findTemplate resolves the template for the content file at p. The two
// leading segments of p (the contents folder and the language prefix) are
// not part of the lookup. When nothing matches the file's own name, the
// default template name is looked up the same way.
func findTemplate(templates *vfs.Folder, p, defaultName string) (string, error) {
	target := lookupPath(p)
	if found, _, ok := templates.Find(target); ok {
		return found, nil
	}
	fallback := path.Join(path.Dir(target), defaultName)
	if found, _, ok := templates.Find(fallback); ok {
		return found, nil
	}
	return "", fmt.Errorf("%w for %s (looked up as %s and %s)", ErrNoTemplate, p, target, fallback)
}

func lookupPath(p string) string {
	parts := strings.Split(p, "/")
	if len(parts) <= 2 {
		return parts[len(parts)-1]
	}
	return path.Join(parts[2:]...)
}
