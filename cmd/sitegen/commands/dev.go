package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	serrors "git.home.luguber.info/inful/sitegen/internal/errors"
	"git.home.luguber.info/inful/sitegen/internal/livereload"
	"git.home.luguber.info/inful/sitegen/internal/logfields"
	"git.home.luguber.info/inful/sitegen/internal/metrics"
	"git.home.luguber.info/inful/sitegen/internal/retry"
	"git.home.luguber.info/inful/sitegen/internal/watch"
)

// DevCmd builds the site, serves it and keeps it up to date.
type DevCmd struct {
	Port         int  `name:"port" short:"p" help:"Dev server port (overrides dev.port)."`
	NoLiveReload bool `name:"no-live-reload" help:"Disable LiveReload SSE and script injection."`
}

func (d *DevCmd) Run(_ *Global, root *CLI) error {
	sigctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	if d.Port > 0 {
		cfg.Dev.Port = d.Port
	}

	st, err := NewStack(cfg, cfg.Dev.Metrics)
	if err != nil {
		return err
	}
	defer st.Close()

	if _, err := st.Site.Build(sigctx); err != nil {
		return err
	}

	var notifiers []livereload.Notifier
	var hub *livereload.Hub
	if cfg.Dev.LiveReload && !d.NoLiveReload {
		hub = livereload.NewHub(st.Site.Recorder())
		notifiers = append(notifiers, hub)
	}
	if cfg.Notify.NATSURL != "" {
		nn, err := livereload.DialNATS(sigctx, cfg.Notify.NATSURL, cfg.Notify.Subject, retry.DefaultPolicy())
		if err != nil {
			slog.Warn("NATS notifications disabled", logfields.URL(cfg.Notify.NATSURL), logfields.Error(err))
		} else {
			defer func() { _ = nn.Close() }()
			notifiers = append(notifiers, nn)
		}
	}

	opts := livereload.ServerOptions{Dir: cfg.Paths.Dest, Hub: hub}
	if st.Registry != nil {
		opts.Metrics = metrics.HTTPHandler(st.Registry)
	}
	server := livereload.NewServer(opts)
	engine := watch.New(st.Site, livereload.Multi(notifiers...))

	ctx, cancel := context.WithCancel(sigctx)
	defer cancel()
	errCh := make(chan error, 2)
	go func() { errCh <- engine.Run(ctx) }()
	go func() {
		if err := server.ListenAndServe(ctx, fmt.Sprintf(":%d", cfg.Dev.Port)); err != nil {
			errCh <- serrors.Wrap(err, serrors.CategoryRuntime, serrors.SeverityFatal, "dev server failed")
			return
		}
		errCh <- nil
	}()

	var first error
	for range 2 {
		if err := <-errCh; err != nil && first == nil {
			first = err
			cancel()
		}
	}
	slog.Info("Dev session ended")
	return first
}
