package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/assets"
	"git.home.luguber.info/inful/sitegen/internal/content"
	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/livereload"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/paths"
	"git.home.luguber.info/inful/sitegen/internal/site"
)

const queueSize = 64

// Engine reconciles the output tree of a site with source changes. It works
// on the site's own content store, which must already be populated by a
// production build.
type Engine struct {
	site     *site.Site
	notifier livereload.Notifier
	recorder metrics.Recorder
	roots    map[Area]string
	locks    map[Area]*sync.Mutex
	queues   map[Area]chan Event
	resync   time.Duration
}

// New creates an engine for s. A nil notifier discards notifications.
func New(s *site.Site, notifier livereload.Notifier) *Engine {
	if notifier == nil {
		notifier = livereload.Nop{}
	}
	cfg := s.Config()
	e := &Engine{
		site:     s,
		notifier: notifier,
		recorder: s.Recorder(),
		roots: map[Area]string{
			AreaPages:  cfg.Paths.Pages,
			AreaAssets: cfg.Paths.Assets,
			AreaStyles: cfg.Paths.Styles,
		},
		locks:  make(map[Area]*sync.Mutex, len(Areas)),
		queues: make(map[Area]chan Event, len(Areas)),
		resync: cfg.Dev.ResyncInterval,
	}
	for _, a := range Areas {
		e.locks[a] = &sync.Mutex{}
		e.queues[a] = make(chan Event, queueSize)
	}
	return e
}

// Classify returns the area whose root contains path. Nested roots resolve
// to the longest match.
func (e *Engine) Classify(path string) (Area, bool) {
	var (
		best    Area
		bestLen = -1
	)
	for _, a := range Areas {
		root := e.roots[a]
		if root == "" || !paths.Within(root, path) {
			continue
		}
		if l := len(filepath.Clean(root)); l > bestLen {
			best, bestLen = a, l
		}
	}
	return best, bestLen >= 0
}

// Handle reconciles one event. Events of the same area never run
// concurrently. Failures, including panics, are logged, counted and
// returned; the engine stays usable either way.
func (e *Engine) Handle(ctx context.Context, ev Event) (err error) {
	mu, ok := e.locks[ev.Area]
	if !ok {
		return serrors.ValidationFailed("area", fmt.Sprintf("unknown area %q", ev.Area))
	}
	mu.Lock()
	defer mu.Unlock()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = serrors.InternalError(fmt.Sprintf("panic while handling %s %s", ev.Op, ev.Path), fmt.Errorf("%v", r))
		}
		e.recorder.IncReconcile(string(ev.Area), string(ev.Op), metrics.ResultOf(err))
		e.recorder.ObserveReconcileDuration(string(ev.Area), time.Since(start))
		attrs := []any{logfields.Area(string(ev.Area)), logfields.Op(string(ev.Op)), logfields.Path(ev.Path), logfields.Since(start)}
		if err != nil {
			slog.Error("Reconciliation failed", append(attrs, logfields.Error(err))...)
			return
		}
		slog.Debug("Reconciled", attrs...)
	}()

	var notify bool
	switch ev.Area {
	case AreaPages:
		notify, err = e.handlePage(ctx, ev)
	case AreaAssets:
		notify, err = e.handleAsset(ev)
	case AreaStyles:
		notify, err = e.handleStyles(ctx)
	}
	if notify {
		e.notifier.Notify()
	}
	return err
}

func (e *Engine) handlePage(ctx context.Context, ev Event) (bool, error) {
	switch ev.Op {
	case OpResync:
		return e.resyncPages(ctx)
	case OpUnlink:
		if paths.IsMarkdown(ev.Path) {
			return e.dropPages(ctx, []string{ev.Path})
		}
		// A removed directory takes its pages and copied files with it. Only
		// outputs written from the pages tree are deleted; the assets tree
		// mirrors into the same output root.
		var nested []string
		for _, c := range e.site.Store().Contents() {
			if paths.Within(ev.Path, c.SourcePath) {
				nested = append(nested, c.SourcePath)
			}
		}
		var errs []error
		if len(nested) > 0 {
			if _, err := e.dropPages(ctx, nested); err != nil {
				errs = append(errs, err)
			}
		}
		if _, err := e.site.PageFiles().Remove(ev.Path); err != nil {
			errs = append(errs, serrors.AssetFailed(ev.Path, err))
		}
		return true, errors.Join(errs...)
	default:
		if isDir(ev.Path) {
			return false, nil
		}
		if !paths.IsMarkdown(ev.Path) {
			if _, err := e.site.PageFiles().Copy(ev.Path); err != nil {
				return false, serrors.AssetFailed(ev.Path, err)
			}
			return true, nil
		}
		c, err := e.site.Store().Load(ev.Path)
		if err != nil {
			return false, serrors.PageFailed(ev.Path, err)
		}
		e.site.Store().Upsert(c)
		if err := e.regenerate(ctx); err != nil {
			return false, err
		}
		return true, nil
	}
}

// dropPages removes tracked pages and their outputs, then regenerates the
// rest. Untracked sources change nothing and notify no one.
func (e *Engine) dropPages(ctx context.Context, sources []string) (bool, error) {
	var (
		removed bool
		errs    []error
	)
	for _, src := range sources {
		c, ok := e.site.Store().Remove(src)
		if !ok {
			continue
		}
		removed = true
		if err := e.deleteOutput(c.OutputPath); err != nil {
			errs = append(errs, serrors.OutputFailed("delete "+c.OutputPath, err))
		}
	}
	if !removed {
		return false, nil
	}
	if err := e.regenerate(ctx); err != nil {
		errs = append(errs, err)
	}
	return true, errors.Join(errs...)
}

func (e *Engine) deleteOutput(outputPath string) error {
	e.site.Emitter().Forget(outputPath)
	if err := assets.Delete(outputPath); err != nil {
		return err
	}
	assets.Prune(filepath.Dir(outputPath), e.site.Config().Paths.Dest)
	return nil
}

// resyncPages rescans the pages tree from scratch, recovering from events
// the watcher lost.
func (e *Engine) resyncPages(ctx context.Context) (bool, error) {
	store := e.site.Store()
	before := store.Contents()

	scan, err := store.Rebuild(ctx)
	if err != nil {
		return false, site.RebuildError(ctx, store.PagesRoot(), err)
	}
	for _, c := range before {
		if _, ok := store.Get(c.SourcePath); ok {
			continue
		}
		if err := e.deleteOutput(c.OutputPath); err != nil {
			slog.Warn("Failed to delete stale page", logfields.Dest(c.OutputPath), logfields.Error(err))
		}
	}

	files := e.site.PageFiles()
	present := make(map[string]bool, len(scan.Assets))
	failures := scan.Failures
	for _, p := range scan.Assets {
		present[filepath.Clean(p)] = true
		if _, err := files.Copy(p); err != nil {
			failures = append(failures, content.FileError{Path: p, Stage: content.StageCopy, Err: err})
		}
	}
	for _, src := range files.Sources() {
		if present[src] {
			continue
		}
		if _, err := files.Remove(src); err != nil {
			slog.Warn("Failed to delete stale file", logfields.Path(src), logfields.Error(err))
		}
	}
	logFailures(failures)
	slog.Info("Resynchronized pages", logfields.Count(store.Len()), slog.Int("assets", len(scan.Assets)))
	if err := e.regenerate(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) regenerate(ctx context.Context) error {
	res, err := e.site.Regenerate(ctx)
	logFailures(res.Failures)
	if err != nil {
		return err
	}
	slog.Debug("Regenerated pages", logfields.Count(res.Pages), slog.Int("written", res.Written), slog.Int("skipped", res.Skipped))
	return nil
}

func (e *Engine) handleAsset(ev Event) (bool, error) {
	files := e.site.AssetFiles()
	if ev.Op == OpUnlink {
		if _, err := files.Remove(ev.Path); err != nil {
			return true, serrors.AssetFailed(ev.Path, err)
		}
		return true, nil
	}
	if ev.Op == OpResync || isDir(ev.Path) {
		return false, nil
	}
	if _, err := files.Copy(ev.Path); err != nil {
		return true, serrors.AssetFailed(ev.Path, err)
	}
	return true, nil
}

// handleStyles recompiles every entry point: any partial may be imported by
// any entry.
func (e *Engine) handleStyles(ctx context.Context) (bool, error) {
	failures := e.site.Styles().Run(ctx)
	if len(failures) == 0 {
		return true, nil
	}
	errs := make([]error, 0, len(failures))
	for _, f := range failures {
		errs = append(errs, serrors.StyleFailed(f.Path, f.Err))
	}
	return true, errors.Join(errs...)
}

func logFailures(failures []content.FileError) {
	for _, f := range failures {
		slog.Warn("Page step failed", logfields.Path(f.Path), logfields.Stage(string(f.Stage)), logfields.Error(f.Err))
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
