package preview

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/span/internal/logfields"
)

// DefaultDebounce is the quiet period after the last change before a
// rebuild starts.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches Dir recursively and calls Rebuild after changes settle.
// At most one rebuild runs at a time; changes made while it runs cause
// exactly one further rebuild.
type Watcher struct {
	// Dir is the directory to watch.
	Dir string
	// Exclude lists directories whose events are ignored (the output
	// directory when it lives inside Dir).
	Exclude []string
	// Debounce overrides DefaultDebounce when non-zero.
	Debounce time.Duration
	// Rebuild performs one build. Its error is logged and watching goes on.
	Rebuild func(ctx context.Context) error
}

// Run blocks until ctx is done or the underlying watcher fails to start.
func (w *Watcher) Run(ctx context.Context) error {
	dir, err := filepath.Abs(w.Dir)
	if err != nil {
		return err
	}
	excluded := make([]string, 0, len(w.Exclude))
	for _, e := range w.Exclude {
		abs, err := filepath.Abs(e)
		if err != nil {
			return err
		}
		excluded = append(excluded, abs)
	}

	watcher, err := setupFileWatcher(dir, excluded)
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	debounce := w.Debounce
	if debounce == 0 {
		debounce = DefaultDebounce
	}
	rebuildReq, trigger, stop := setupRebuildDebouncer(debounce)
	defer stop()

	done := startRebuildWorker(ctx, rebuildReq, w.Rebuild)
	defer func() { <-done }()

	slog.Info("Watching for changes", logfields.Path(dir))
	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopped watching", logfields.Path(dir))
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleFileEvent(watcher, ev, excluded, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// setupFileWatcher creates and configures the filesystem watcher.
func setupFileWatcher(dir string, excluded []string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if err := addDirsRecursive(watcher, dir, excluded); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return watcher, nil
}

// setupRebuildDebouncer returns the rebuild channel, a trigger that
// (re)arms the debounce timer, and a stop function disarming it.
func setupRebuildDebouncer(delay time.Duration) (chan struct{}, func(), func()) {
	var mu sync.Mutex
	var timer *time.Timer
	rebuildReq := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}
	return rebuildReq, trigger, stop
}

// startRebuildWorker processes rebuild requests one at a time. Requests
// arriving during a rebuild are coalesced into a single follow-up. The
// returned channel is closed when the worker exits.
func startRebuildWorker(ctx context.Context, rebuildReq chan struct{}, rebuild func(context.Context) error) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-rebuildReq:
				processRebuild(ctx, rebuild)
			}
		}
	}()
	return done
}

func processRebuild(ctx context.Context, rebuild func(context.Context) error) {
	slog.Info("Change detected; rebuilding")
	start := time.Now()
	if err := rebuild(ctx); err != nil {
		slog.Warn("Rebuild failed", logfields.Error(err))
		return
	}
	slog.Info("Rebuild complete", logfields.DurationMS(float64(time.Since(start).Microseconds())/1000))
}

// handleFileEvent triggers a rebuild for relevant events and starts
// watching newly created directories.
func handleFileEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, excluded []string, trigger func()) {
	if shouldIgnoreEvent(ev.Name) || isExcluded(ev.Name, excluded) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name, excluded)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func addDirsRecursive(w *fsnotify.Watcher, root string, excluded []string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && (shouldIgnoreEvent(path) || isExcluded(path, excluded)) {
			return filepath.SkipDir
		}
		if err := w.Add(path); err != nil {
			slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
		}
		return nil
	})
}

// isExcluded reports whether path is one of excluded or lies below one.
func isExcluded(path string, excluded []string) bool {
	for _, e := range excluded {
		if path == e || strings.HasPrefix(path, e+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	// Hidden files, including .git and editor lock files (.#name)
	if strings.HasPrefix(base, ".") {
		return true
	}

	// Editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db"
}
