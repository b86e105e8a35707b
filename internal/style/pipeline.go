package style

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/sitegen/internal/assets"
	"git.home.luguber.info/inful/sitegen/internal/config"
	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
)

// Pipeline compiles every configured entry point into the output tree.
// Entry points are always recompiled as a whole: the compiler resolves
// imports itself, so which entry a changed partial affects is unknown.
type Pipeline struct {
	compiler   Compiler
	stylesRoot string
	destRoot   string
	entries    []config.StyleEntry
	recorder   metrics.Recorder
}

// NewPipeline creates a pipeline for the entries of cfg.
func NewPipeline(cfg *config.Config, compiler Compiler) *Pipeline {
	return &Pipeline{
		compiler:   compiler,
		stylesRoot: cfg.Paths.Styles,
		destRoot:   cfg.Paths.Dest,
		entries:    cfg.Styles,
		recorder:   metrics.NoopRecorder{},
	}
}

// WithRecorder sets the metrics recorder.
func (p *Pipeline) WithRecorder(r metrics.Recorder) *Pipeline {
	if r != nil {
		p.recorder = r
	}
	return p
}

// Entries returns the number of configured entry points.
func (p *Pipeline) Entries() int { return len(p.entries) }

// Run compiles all entry points. A failing entry is reported and its output
// left as it was; the remaining entries are still compiled.
func (p *Pipeline) Run(ctx context.Context) []content.FileError {
	var failures []content.FileError
	for _, entry := range p.entries {
		if ctx.Err() != nil {
			break
		}
		if err := p.compile(ctx, entry); err != nil {
			src := filepath.Join(p.stylesRoot, entry.Src)
			p.recorder.IncStyleCompile(metrics.ResultFailed)
			failures = append(failures, content.FileError{Path: src, Stage: content.StageStyle, Err: err})
			continue
		}
		p.recorder.IncStyleCompile(metrics.ResultSuccess)
	}
	return failures
}

func (p *Pipeline) compile(ctx context.Context, entry config.StyleEntry) error {
	start := time.Now()
	src := filepath.Join(p.stylesRoot, entry.Src)
	raw, err := os.ReadFile(src) // #nosec G304 -- entry points come from config
	if err != nil {
		return err
	}
	syntax := entry.Syntax
	if syntax == "" {
		syntax = SyntaxOf(src)
	}
	css, err := p.compiler.Compile(ctx, Input{
		Source:       string(raw),
		Path:         src,
		Syntax:       syntax,
		IncludePaths: []string{filepath.Dir(src), p.stylesRoot},
	})
	if err != nil {
		return err
	}
	dst := filepath.Join(p.destRoot, entry.Dest)
	if err := assets.WriteBytes(dst, []byte(css)); err != nil {
		return err
	}
	slog.Debug("Compiled style", logfields.Path(src), logfields.Dest(dst), logfields.Since(start))
	return nil
}
