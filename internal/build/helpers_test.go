package build

import (
	"context"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/span/internal/command"
	"git.home.luguber.info/inful/span/internal/config"
	"git.home.luguber.info/inful/span/internal/metrics"
	"git.home.luguber.info/inful/span/internal/vfs"
)

type execCall struct {
	argv  []string
	stdin string
}

// fakeExecutor answers commands by program name.
type fakeExecutor struct {
	mu       sync.Mutex
	calls    []execCall
	programs map[string]func(argv []string, stdin []byte) *command.Result
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{programs: make(map[string]func([]string, []byte) *command.Result)}
}

func (f *fakeExecutor) on(program string, fn func(argv []string, stdin []byte) *command.Result) *fakeExecutor {
	f.programs[program] = fn
	return f
}

func (f *fakeExecutor) Run(ctx context.Context, argv []string, stdin []byte) (*command.Result, error) {
	if len(argv) == 0 {
		return nil, command.ErrEmptyCommand
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.calls = append(f.calls, execCall{argv: slices.Clone(argv), stdin: string(stdin)})
	fn, ok := f.programs[argv[0]]
	f.mu.Unlock()
	if !ok {
		return nil, command.ErrStart
	}
	return fn(argv, stdin), nil
}

func (f *fakeExecutor) callsTo(program string) []execCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []execCall
	for _, c := range f.calls {
		if c.argv[0] == program {
			res = append(res, c)
		}
	}
	return res
}

// wrapRenderer is a Renderer that frames its input.
type wrapRenderer struct {
	mu   sync.Mutex
	reqs []RenderRequest
}

func (r *wrapRenderer) Render(_ context.Context, req RenderRequest) ([]byte, error) {
	r.mu.Lock()
	r.reqs = append(r.reqs, req)
	r.mu.Unlock()
	return []byte("<" + string(req.Content) + ">"), nil
}

func (r *wrapRenderer) request(p string) (RenderRequest, bool) {
	for _, req := range r.reqs {
		if req.Path == p {
			return req, true
		}
	}
	return RenderRequest{}, false
}

type countingRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	stages   map[string]metrics.ResultLabel
	files    map[string]int
	outcomes []metrics.BuildOutcomeLabel
	commands int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{stages: map[string]metrics.ResultLabel{}, files: map[string]int{}}
}

func (c *countingRecorder) IncStageResult(stage string, r metrics.ResultLabel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages[stage] = r
}

func (c *countingRecorder) IncFileResult(stage string, r metrics.ResultLabel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.files[stage+"/"+string(r)]++
}

func (c *countingRecorder) IncBuildOutcome(o metrics.BuildOutcomeLabel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes = append(c.outcomes, o)
}

func (c *countingRecorder) ObserveCommandDuration(string, time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands++
}

func tree(t *testing.T, files map[string]string) *vfs.Folder {
	t.Helper()
	f := vfs.New("")
	for p, c := range files {
		require.NoError(t, f.Insert(p, []byte(c)))
	}
	return f
}

func contentsOf(t *testing.T, f *vfs.Folder) map[string]string {
	t.Helper()
	res := make(map[string]string)
	require.NoError(t, f.Walk(func(file vfs.File) error {
		res[file.Path] = string(file.Content)
		return nil
	}))
	return res
}

func baseConfig() *config.Config {
	return &config.Config{
		DefaultTemplate: config.DefaultTemplate,
		Renderer:        "pandoc --to html5",
	}
}

// minimalSource is the smallest tree the render stage accepts.
func minimalSource(t *testing.T, extra map[string]string) *vfs.Folder {
	t.Helper()
	files := map[string]string{
		"templates/default.html": "tmpl",
	}
	for k, v := range extra {
		files[k] = v
	}
	return tree(t, files)
}

func echo(stdout, stderr string, code int) func([]string, []byte) *command.Result {
	return func([]string, []byte) *command.Result {
		return &command.Result{Stdout: []byte(stdout), Stderr: []byte(stderr), ExitCode: code}
	}
}

func upper(_ []string, stdin []byte) *command.Result {
	return &command.Result{Stdout: []byte(strings.ToUpper(string(stdin)))}
}
