package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct{}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}
	st, err := NewStack(cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	report, err := st.Site.Build(ctx)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(os.Stdout, "Built %d pages, %d assets, %d styles into %s (%d failures)\n",
		report.Pages, report.Assets, report.Styles, cfg.Paths.Dest, len(report.Failures))
	return nil
}
