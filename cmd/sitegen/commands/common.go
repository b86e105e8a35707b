// Package commands implements the sitegen CLI commands.
package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitegen/internal/config"
	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/hook"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/site"
	"git.home.luguber.info/inful/sitegen/internal/style"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path (default: sitegen.yaml, optional)" placeholder:"sitegen.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" default:"1" help:"Build the site into the destination directory"`
	Dev   DevCmd   `cmd:"" help:"Build, serve and rebuild on change with live reload"`
	Init  InitCmd  `cmd:"" help:"Write an example configuration file"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// ConfigPath returns the configuration file to use.
func (c *CLI) ConfigPath() string {
	if c.Config == "" {
		return config.DefaultFile
	}
	return c.Config
}

// LoadConfig loads the configuration. Without -c a missing sitegen.yaml
// means the directory conventions apply.
func (c *CLI) LoadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(c.ConfigPath(), c.Config != "")
	if err != nil {
		return nil, err
	}
	slog.Debug("Configuration loaded",
		logfields.Path(c.ConfigPath()),
		slog.String("pages", cfg.Paths.Pages),
		logfields.Dest(cfg.Paths.Dest),
		logfields.Hook(cfg.Hook),
		slog.Int("templates", len(cfg.Templates)))
	return cfg, nil
}

// Stack is a site wired with the process-level collaborators it needs.
type Stack struct {
	Site     *site.Site
	Registry *prom.Registry
	sass     *style.DartSass
}

// Close releases the Sass compiler process.
func (s *Stack) Close() {
	if s.sass != nil {
		_ = s.sass.Close()
	}
}

// NewStack resolves the configured hook, sets up the style compiler and,
// when withMetrics is set, a Prometheus recorder on a private registry.
func NewStack(cfg *config.Config, withMetrics bool) (*Stack, error) {
	registry := hook.NewRegistry()
	if err := hook.RegisterBuiltins(registry); err != nil {
		return nil, serrors.InternalError("failed to register page hooks", err)
	}
	fn := registry.Resolve(cfg.Hook, hook.Env{
		Templates: cfg.Templates,
		Site:      cfg.Site,
		DestRoot:  cfg.Paths.Dest,
	})

	st := &Stack{
		sass: style.NewDartSass(style.SassOptions{Binary: cfg.Sass.Binary, OutputStyle: cfg.Sass.OutputStyle}),
	}
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if withMetrics {
		st.Registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(st.Registry)
	}
	st.Site = site.New(cfg,
		site.WithHook(cfg.Hook, fn),
		site.WithCompiler(style.BySyntax{Sass: st.sass}),
		site.WithRecorder(recorder),
	)
	return st, nil
}
