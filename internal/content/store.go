package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"git.home.luguber.info/inful/sitegen/internal/metadata"
	"git.home.luguber.info/inful/sitegen/internal/paths"
)

// Stage names the step at which a single file failed.
type Stage string

const (
	StageRead  Stage = "read"
	StageParse Stage = "parse"
	StageCopy  Stage = "copy"
	StageStyle Stage = "style"
	StageEmit  Stage = "emit"
	StageHook  Stage = "hook"
)

// FileError records a failure confined to one file. It never aborts a build.
type FileError struct {
	Path  string
	Stage Stage
	Err   error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e FileError) Unwrap() error { return e.Err }

// ScanResult is the outcome of a full scan of the pages tree.
type ScanResult struct {
	// Contents are the pages in discovery order.
	Contents []Content
	// Assets are the non-Markdown files found under the pages root, in
	// discovery order. The caller copies them.
	Assets   []string
	Failures []FileError
}

// Store is the ordered set of pages of one site, keyed by source path.
//
// Order is discovery order for a rebuilt store; upserted pages that were not
// known yet are appended. Store never writes to disk.
type Store struct {
	pagesRoot string
	destRoot  string
	opts      metadata.Options

	mu    sync.RWMutex
	items []Content
	index map[string]int
}

// NewStore returns an empty store for the given trees.
func NewStore(pagesRoot, destRoot string, opts metadata.Options) *Store {
	return &Store{
		pagesRoot: pagesRoot,
		destRoot:  destRoot,
		opts:      opts,
		index:     make(map[string]int),
	}
}

// PagesRoot returns the root of the Markdown tree.
func (s *Store) PagesRoot() string { return s.pagesRoot }

// DestRoot returns the root of the output tree.
func (s *Store) DestRoot() string { return s.destRoot }

// Load reads one page with the store's roots and options.
func (s *Store) Load(sourcePath string) (Content, error) {
	return Load(sourcePath, s.pagesRoot, s.destRoot, s.opts)
}

// Rebuild scans the pages tree depth first in lexical order and replaces the
// store's contents with the pages found. Pages that fail to load are reported
// in the result and left out. Only an unreadable root is returned as an error,
// in which case the store is left untouched. A directory reached a second
// time through a symlink is not descended into again.
func (s *Store) Rebuild(ctx context.Context) (*ScanResult, error) {
	if _, err := os.ReadDir(s.pagesRoot); err != nil {
		return nil, fmt.Errorf("scan pages: %w", err)
	}

	res := &ScanResult{}
	// Directories are tracked by resolved path so symlink cycles end.
	visited := map[string]bool{}
	stack := []string{s.pagesRoot}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		info, err := os.Stat(p)
		if err != nil {
			res.Failures = append(res.Failures, FileError{Path: p, Stage: StageRead, Err: err})
			continue
		}
		if info.IsDir() {
			real, err := filepath.EvalSymlinks(p)
			if err != nil {
				res.Failures = append(res.Failures, FileError{Path: p, Stage: StageRead, Err: err})
				continue
			}
			if visited[real] {
				continue
			}
			visited[real] = true
			entries, err := os.ReadDir(p)
			if err != nil {
				res.Failures = append(res.Failures, FileError{Path: p, Stage: StageRead, Err: err})
				continue
			}
			// Push in reverse so the lexically first entry is popped first.
			for i := len(entries) - 1; i >= 0; i-- {
				stack = append(stack, filepath.Join(p, entries[i].Name()))
			}
			continue
		}

		if !paths.IsMarkdown(p) {
			res.Assets = append(res.Assets, p)
			continue
		}
		c, err := s.Load(p)
		if err != nil {
			stage := StageParse
			if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
				stage = StageRead
			}
			res.Failures = append(res.Failures, FileError{Path: p, Stage: stage, Err: err})
			continue
		}
		res.Contents = append(res.Contents, c)
	}

	s.Replace(res.Contents)
	return res, nil
}

// Upsert replaces the page with the same source path in place, or appends c
// when the store does not know it yet.
func (s *Store) Upsert(c Content) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i, ok := s.index[c.SourcePath]; ok {
		s.items[i] = c
		return
	}
	s.index[c.SourcePath] = len(s.items)
	s.items = append(s.items, c)
}

// Remove deletes the page with the given source path and reports whether it
// was present. Removing an unknown path changes nothing.
func (s *Store) Remove(sourcePath string) (Content, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[sourcePath]
	if !ok {
		return Content{}, false
	}
	removed := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	s.reindex()
	return removed, true
}

// Replace installs contents as the new ordering. When a source path occurs
// more than once the first occurrence wins.
func (s *Store) Replace(contents []Content) {
	items := make([]Content, 0, len(contents))
	seen := make(map[string]struct{}, len(contents))
	for _, c := range contents {
		if _, dup := seen[c.SourcePath]; dup {
			continue
		}
		seen[c.SourcePath] = struct{}{}
		items = append(items, c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.reindex()
}

// Get returns the page stored for sourcePath.
func (s *Store) Get(sourcePath string) (Content, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[sourcePath]
	if !ok {
		return Content{}, false
	}
	return s.items[i], true
}

// Contents returns a copy of the pages in store order.
func (s *Store) Contents() []Content {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Len returns the number of pages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) reindex() {
	s.index = make(map[string]int, len(s.items))
	for i, c := range s.items {
		s.index[c.SourcePath] = i
	}
}
