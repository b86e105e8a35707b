package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// Submit queues ev for its area's worker. It blocks while the queue is full
// and gives up when ctx is done.
func (e *Engine) Submit(ctx context.Context, ev Event) {
	q, ok := e.queues[ev.Area]
	if !ok {
		return
	}
	select {
	case q <- ev:
	case <-ctx.Done():
	}
}

// Run watches the source trees and reconciles changes until ctx is done.
// Each area has a single worker, so events of one area are handled in
// arrival order.
func (e *Engine) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return serrors.WatchFailed("", err)
	}
	defer func() { _ = watcher.Close() }()

	for _, a := range Areas {
		root := e.roots[a]
		if root == "" || !isDir(root) {
			slog.Debug("Not watching missing tree", logfields.Area(string(a)), logfields.Path(root))
			continue
		}
		if err := addDirsRecursive(watcher, root); err != nil {
			return serrors.WatchFailed(root, err)
		}
	}

	var wg sync.WaitGroup
	for _, a := range Areas {
		wg.Add(1)
		go func(q <-chan Event) {
			defer wg.Done()
			e.work(ctx, q)
		}(e.queues[a])
	}
	defer wg.Wait()

	if e.resync > 0 {
		sched, err := newResyncScheduler(e.resync, func() {
			e.Submit(ctx, Event{Area: AreaPages, Op: OpResync})
		})
		if err != nil {
			slog.Warn("Periodic resync disabled", logfields.Error(err))
		} else {
			sched.Start()
			defer sched.Stop()
		}
	}

	slog.Info("Watching for changes",
		slog.String("pages", e.roots[AreaPages]),
		slog.String("assets", e.roots[AreaAssets]),
		slog.String("styles", e.roots[AreaStyles]))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Stopped watching")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			for _, out := range e.translate(watcher, ev) {
				e.Submit(ctx, out)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (e *Engine) work(ctx context.Context, q <-chan Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-q:
			_ = e.Handle(ctx, ev)
		}
	}
}

// translate maps one fsnotify event onto the events to reconcile. A created
// directory is watched and every file already inside it is reported as
// added, since their own events may have fired before the watch existed.
func (e *Engine) translate(w *fsnotify.Watcher, ev fsnotify.Event) []Event {
	if shouldIgnore(ev.Name) {
		return nil
	}
	area, ok := e.Classify(ev.Name)
	if !ok {
		return nil
	}
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return []Event{{Area: area, Op: OpUnlink, Path: ev.Name}}
	case ev.Has(fsnotify.Create):
		if !isDir(ev.Name) {
			return []Event{{Area: area, Op: OpAdd, Path: ev.Name}}
		}
		if err := addDirsRecursive(w, ev.Name); err != nil {
			slog.Warn("Failed to watch new directory", logfields.Path(ev.Name), logfields.Error(err))
		}
		var out []Event
		_ = filepath.WalkDir(ev.Name, func(p string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() || shouldIgnore(p) {
				return nil
			}
			out = append(out, Event{Area: area, Op: OpAdd, Path: p})
			return nil
		})
		return out
	case ev.Has(fsnotify.Write):
		return []Event{{Area: area, Op: OpChange, Path: ev.Name}}
	default:
		return nil
	}
}

func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				slog.Warn("watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}
