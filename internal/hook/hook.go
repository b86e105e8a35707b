// Package hook defines the page hook: the step run after every change to the
// set of pages, deciding which pages are written and in which order they are
// kept.
package hook

import (
	"fmt"
	"runtime/debug"

	"git.home.luguber.info/inful/sitegen/internal/content"
)

// EmitFunc materializes one page: template selection, rendering and the file
// write. template is a template name; "" renders the plain document. Failures
// are handled by the emitter and never surface to the hook.
type EmitFunc func(c content.Content, template string, site map[string]any)

// Params is the input of a hook run.
type Params struct {
	// Contents is a snapshot of every page in store order.
	Contents []content.Content
	Emit     EmitFunc
}

// Func is a page hook. It must call Emit for every page it wants written and
// returns the list that becomes the new authoritative ordering.
type Func func(Params) []content.Content

// Default emits every page without template or site data and keeps the
// ordering unchanged.
func Default(p Params) []content.Content {
	for _, c := range p.Contents {
		p.Emit(c, "", nil)
	}
	return p.Contents
}

// Run invokes fn and turns a panic inside it into an error.
func Run(fn Func, p Params) (out []content.Content, err error) {
	if fn == nil {
		fn = Default
	}
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("page hook panicked: %v\n%s", r, debug.Stack())
		}
	}()
	return fn(p), nil
}
