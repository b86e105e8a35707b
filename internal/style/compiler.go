// Package style compiles the configured style entry points into CSS files of
// the output tree.
package style

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bep/godartsass/v2"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// Syntax values understood by compilers.
const (
	SyntaxSCSS = "scss"
	SyntaxSass = "sass"
	SyntaxCSS  = "css"
)

// Input is one stylesheet to compile.
type Input struct {
	Source string
	// Path is the file the source was read from; imports resolve next to it.
	Path         string
	Syntax       string
	IncludePaths []string
}

// Compiler turns a stylesheet source into CSS.
type Compiler interface {
	Compile(ctx context.Context, in Input) (string, error)
}

// SyntaxOf returns the syntax of path judged by its extension.
func SyntaxOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sass":
		return SyntaxSass
	case ".css":
		return SyntaxCSS
	default:
		return SyntaxSCSS
	}
}

// Passthrough returns CSS sources unchanged.
type Passthrough struct{}

// Compile implements Compiler.
func (Passthrough) Compile(ctx context.Context, in Input) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return in.Source, nil
}

// SassOptions configures DartSass.
type SassOptions struct {
	// Binary is the dart-sass executable; empty searches PATH for "sass".
	Binary string
	// OutputStyle is "expanded" or "compressed".
	OutputStyle string
}

// DartSass compiles SCSS and indented Sass through the Dart Sass embedded
// protocol. The compiler process is started on first use and shared by all
// compilations until Close.
type DartSass struct {
	opts SassOptions

	mu         sync.Mutex
	transpiler *godartsass.Transpiler
}

// NewDartSass returns a compiler; no process is started yet.
func NewDartSass(opts SassOptions) *DartSass {
	return &DartSass{opts: opts}
}

func (d *DartSass) start() (*godartsass.Transpiler, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.transpiler != nil && !d.transpiler.IsShutDown() {
		return d.transpiler, nil
	}
	t, err := godartsass.Start(godartsass.Options{
		DartSassEmbeddedFilename: d.opts.Binary,
		LogEventHandler: func(ev godartsass.LogEvent) {
			slog.Warn("Sass: "+ev.Message, slog.String("sass_event", sassEventName(ev.Type)))
		},
	})
	if err != nil {
		return nil, fmt.Errorf("start dart sass: %w", err)
	}
	d.transpiler = t
	return t, nil
}

// Compile implements Compiler.
func (d *DartSass) Compile(ctx context.Context, in Input) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t, err := d.start()
	if err != nil {
		return "", err
	}
	args := godartsass.Args{
		Source:       in.Source,
		SourceSyntax: godartsass.ParseSourceSyntax(in.Syntax),
		OutputStyle:  godartsass.ParseOutputStyle(d.opts.OutputStyle),
		IncludePaths: in.IncludePaths,
	}
	if in.Path != "" {
		args.URL = "file://" + filepath.ToSlash(in.Path)
	}
	res, err := t.Execute(args)
	if err != nil {
		return "", err
	}
	return res.CSS, nil
}

// Close stops the compiler process, if one was started.
func (d *DartSass) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.transpiler == nil {
		return nil
	}
	err := d.transpiler.Close()
	d.transpiler = nil
	if err != nil {
		slog.Debug("Dart Sass shutdown", logfields.Error(err))
	}
	return err
}

func sassEventName(t godartsass.LogEventType) string {
	switch t {
	case godartsass.LogEventTypeDeprecated:
		return "deprecated"
	case godartsass.LogEventTypeDebug:
		return "debug"
	default:
		return "warning"
	}
}

// BySyntax dispatches plain CSS to Passthrough and everything else to Sass.
type BySyntax struct {
	Sass Compiler
}

// Compile implements Compiler.
func (b BySyntax) Compile(ctx context.Context, in Input) (string, error) {
	if strings.EqualFold(in.Syntax, SyntaxCSS) {
		return Passthrough{}.Compile(ctx, in)
	}
	if b.Sass == nil {
		return "", fmt.Errorf("no sass compiler for %s", in.Path)
	}
	return b.Sass.Compile(ctx, in)
}
