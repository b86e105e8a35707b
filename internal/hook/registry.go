package hook

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/render"
)

// Env is what a hook factory may draw on when building its hook.
type Env struct {
	Templates render.Templates
	Site      map[string]any
	DestRoot  string
}

// Factory builds a hook for a site.
type Factory func(Env) (Func, error)

// Registry maps hook names to factories. The bootstrap layer fills it; the
// build only ever resolves from it.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name. Names are unique.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" || f == nil {
		return fmt.Errorf("invalid hook registration %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("hook %s already registered", name)
	}
	r.factories[name] = f
	return nil
}

// Names lists the registered hooks in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve builds the hook registered under name. An empty or unknown name, or
// a factory that fails, yields Default; resolution never fails a build.
func (r *Registry) Resolve(name string, env Env) Func {
	if name == "" {
		return Default
	}
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		slog.Debug("Page hook not registered, using default", logfields.Hook(name))
		return Default
	}
	fn, err := f(env)
	if err != nil || fn == nil {
		slog.Debug("Page hook unavailable, using default", logfields.Hook(name), logfields.Error(err))
		return Default
	}
	return fn
}

// RegisterBuiltins registers the "default" and "templated" hooks.
func RegisterBuiltins(r *Registry) error {
	if err := r.Register("default", func(Env) (Func, error) { return Default, nil }); err != nil {
		return err
	}
	return r.Register("templated", func(env Env) (Func, error) {
		return Templated(env.Templates, env.Site, env.DestRoot), nil
	})
}
