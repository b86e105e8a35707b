// Package site ties the page pipeline together: it owns the content store,
// runs the page hook and performs full production builds.
package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/assets"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/hook"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/render"
	"git.home.luguber.info/inful/sitegen/internal/style"
)

// Site is one site being built. It is the single owner of its content store.
type Site struct {
	cfg      *config.Config
	store    *content.Store
	emitter  *Emitter
	hook     hook.Func
	hookName string
	styles   *style.Pipeline
	recorder metrics.Recorder

	pageFiles  *assets.Ledger
	assetFiles *assets.Ledger
}

// Option configures a Site.
type Option func(*Site)

// WithHook sets the page hook; name is used in logs only.
func WithHook(name string, fn hook.Func) Option {
	return func(s *Site) {
		if fn != nil {
			s.hook = fn
			s.hookName = name
		}
	}
}

// WithCompiler sets the style compiler used for the configured entry points.
func WithCompiler(c style.Compiler) Option {
	return func(s *Site) {
		if c != nil {
			s.styles = style.NewPipeline(s.cfg, c)
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(s *Site) {
		if r != nil {
			s.recorder = r
		}
	}
}

// New creates a site for cfg. Without options the default hook is used and
// only plain CSS entry points can be compiled.
func New(cfg *config.Config, opts ...Option) *Site {
	s := &Site{
		cfg:      cfg,
		store:    content.NewStore(cfg.Paths.Pages, cfg.Paths.Dest, cfg.MetadataOptions()),
		hook:     hook.Default,
		hookName: config.DefaultHook,
		styles:   style.NewPipeline(cfg, style.BySyntax{}),
		recorder: metrics.NoopRecorder{},

		pageFiles:  assets.NewLedger(cfg.Paths.Pages, cfg.Paths.Dest),
		assetFiles: assets.NewLedger(cfg.Paths.Assets, cfg.Paths.Dest),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.styles.WithRecorder(s.recorder)
	s.emitter = NewEmitter(render.NewRenderer(nil), cfg.Templates, s.recorder)
	return s
}

// Config returns the site configuration.
func (s *Site) Config() *config.Config { return s.cfg }

// Store returns the content store.
func (s *Site) Store() *content.Store { return s.store }

// Emitter returns the page emitter.
func (s *Site) Emitter() *Emitter { return s.emitter }

// Styles returns the style pipeline.
func (s *Site) Styles() *style.Pipeline { return s.styles }

// PageFiles records the passthrough files copied from the pages tree.
func (s *Site) PageFiles() *assets.Ledger { return s.pageFiles }

// AssetFiles records the files copied from the assets tree.
func (s *Site) AssetFiles() *assets.Ledger { return s.assetFiles }

// Recorder returns the metrics recorder.
func (s *Site) Recorder() metrics.Recorder { return s.recorder }

// EmitResult is the outcome of one hook run.
type EmitResult struct {
	Pages    int
	Written  int
	Skipped  int
	Failures []content.FileError
}

// Regenerate runs the page hook over the whole store, emitting pages, and
// installs the hook's result as the new ordering. A hook that panics leaves
// the store unchanged and is reported as an error.
func (s *Site) Regenerate(_ context.Context) (EmitResult, error) {
	batch := s.emitter.NewBatch()
	contents := s.store.Contents()
	out, err := hook.Run(s.hook, hook.Params{Contents: contents, Emit: batch.Emit})
	res := EmitResult{Pages: len(contents), Written: batch.Written, Skipped: batch.Skipped, Failures: batch.Failures}
	if err != nil {
		return res, serrors.HookFailed(s.hookName, err)
	}
	s.store.Replace(out)
	s.recorder.SetContents(s.store.Len())
	return res, nil
}

// Report summarizes a production build.
type Report struct {
	Pages    int
	Written  int
	Assets   int
	Styles   int
	Failures []content.FileError
	Duration time.Duration
}

// Build performs a full production build: the output tree is recreated,
// assets are copied, styles compiled and every page emitted through the hook.
//
// Only configuration problems and an unusable output tree are returned as
// errors. Everything confined to a single file is listed in the report.
func (s *Site) Build(ctx context.Context) (*Report, error) {
	start := time.Now()
	if info, err := os.Stat(s.cfg.Paths.Pages); err != nil || !info.IsDir() {
		return nil, serrors.MissingDirectory("pages", s.cfg.Paths.Pages)
	}
	if err := recreate(s.cfg.Paths.Dest); err != nil {
		return nil, serrors.OutputFailed("recreate", err)
	}
	s.emitter.Reset()
	s.pageFiles.Reset()
	s.assetFiles.Reset()

	report := &Report{}

	copied, failures, err := s.assetFiles.CopyTree(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, serrors.OutputFailed("copy assets", err)
	}
	report.Assets += copied
	report.Failures = append(report.Failures, failures...)

	styleFailures := s.styles.Run(ctx)
	report.Styles = s.styles.Entries() - len(styleFailures)
	report.Failures = append(report.Failures, styleFailures...)

	scan, err := s.store.Rebuild(ctx)
	if err != nil {
		return nil, RebuildError(ctx, s.cfg.Paths.Pages, err)
	}
	report.Failures = append(report.Failures, scan.Failures...)
	for _, p := range scan.Assets {
		if _, err := s.pageFiles.Copy(p); err != nil {
			report.Failures = append(report.Failures, content.FileError{Path: p, Stage: content.StageCopy, Err: err})
			continue
		}
		report.Assets++
	}

	res, err := s.Regenerate(ctx)
	report.Pages = res.Pages
	report.Written = res.Written
	report.Failures = append(report.Failures, res.Failures...)
	if err != nil {
		report.Failures = append(report.Failures, content.FileError{Path: s.cfg.Paths.Pages, Stage: content.StageHook, Err: err})
	}

	report.Duration = time.Since(start)
	s.recorder.ObserveBuildDuration(report.Duration)
	for _, f := range report.Failures {
		slog.Warn("Build step failed", logfields.Path(f.Path), logfields.Stage(string(f.Stage)), logfields.Error(f.Err))
	}
	slog.Info("Build complete",
		logfields.Count(report.Pages),
		slog.Int("assets", report.Assets),
		slog.Int("failures", len(report.Failures)),
		logfields.DurationMS(float64(report.Duration.Milliseconds())))
	return report, nil
}

// RebuildError classifies a failed content store rebuild. A cancelled
// context is passed through unchanged; anything else means the pages tree
// could not be read.
func RebuildError(ctx context.Context, pagesRoot string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return serrors.MissingDirectory("pages", pagesRoot)
}

func recreate(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	return os.MkdirAll(dir, 0o755) //nolint:gosec // public output tree
}
