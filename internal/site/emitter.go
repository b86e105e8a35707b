package site

import (
	"log/slog"
	"os"
	"sync"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/sitegen/internal/assets"
	"git.home.luguber.info/inful/sitegen/internal/content"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/render"
)

// Emitter materializes pages: it resolves the template name, renders the page
// and writes it atomically. A page whose rendered HTML is identical to what
// was last written to an existing file is not rewritten.
type Emitter struct {
	renderer  *render.Renderer
	templates render.Templates
	recorder  metrics.Recorder

	mu      sync.Mutex
	written map[string]string // output path -> fingerprint of last write
}

// NewEmitter creates an emitter rendering with templates.
func NewEmitter(renderer *render.Renderer, templates render.Templates, recorder metrics.Recorder) *Emitter {
	if renderer == nil {
		renderer = render.NewRenderer(nil)
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Emitter{
		renderer:  renderer,
		templates: templates,
		recorder:  recorder,
		written:   make(map[string]string),
	}
}

// Batch collects the outcome of the emits of one hook run.
type Batch struct {
	e *Emitter

	Written  int
	Skipped  int
	Failures []content.FileError
}

// NewBatch starts a batch. Batch.Emit is the hook's EmitFunc.
func (e *Emitter) NewBatch() *Batch {
	return &Batch{e: e}
}

// Emit renders and writes one page. Failures are recorded on the batch.
func (b *Batch) Emit(c content.Content, template string, site map[string]any) {
	written, err := b.e.emit(c, template, site)
	switch {
	case err != nil:
		b.Failures = append(b.Failures, content.FileError{Path: c.SourcePath, Stage: content.StageEmit, Err: err})
		b.e.recorder.IncPageEmit(metrics.ResultFailed)
	case written:
		b.Written++
		b.e.recorder.IncPageEmit(metrics.ResultSuccess)
	default:
		b.Skipped++
		b.e.recorder.IncPageEmit(metrics.ResultSkipped)
	}
}

func (e *Emitter) emit(c content.Content, name string, site map[string]any) (bool, error) {
	tmpl := ""
	if name != "" {
		src, ok := e.templates[name]
		if !ok {
			slog.Debug("Unknown template, rendering plain page", logfields.Template(name), logfields.Path(c.SourcePath))
		}
		tmpl = src
	}

	html, err := e.renderer.Render(c.Markdown, c.Metadata, tmpl, site)
	if err != nil {
		return false, err
	}

	fp := mdfp.CalculateFingerprintFromParts("", html)
	if e.unchanged(c.OutputPath, fp) {
		return false, nil
	}
	if err := assets.WriteBytes(c.OutputPath, []byte(html)); err != nil {
		return false, err
	}

	e.mu.Lock()
	e.written[c.OutputPath] = fp
	e.mu.Unlock()
	slog.Debug("Wrote page", logfields.Path(c.SourcePath), logfields.Dest(c.OutputPath))
	return true, nil
}

func (e *Emitter) unchanged(outputPath, fp string) bool {
	e.mu.Lock()
	last, ok := e.written[outputPath]
	e.mu.Unlock()
	if !ok || last != fp {
		return false
	}
	_, err := os.Stat(outputPath)
	return err == nil
}

// Forget drops what is known about outputPath, typically after deleting it.
func (e *Emitter) Forget(outputPath string) {
	e.mu.Lock()
	delete(e.written, outputPath)
	e.mu.Unlock()
}

// Reset forgets every written page.
func (e *Emitter) Reset() {
	e.mu.Lock()
	e.written = make(map[string]string)
	e.mu.Unlock()
}
