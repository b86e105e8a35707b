package watch

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

// resyncScheduler periodically asks for a full pages rescan.
type resyncScheduler struct {
	scheduler gocron.Scheduler
}

func newResyncScheduler(interval time.Duration, task func()) (*resyncScheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(task),
		gocron.WithName("pages-resync"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("failed to create resync job: %w", err)
	}
	return &resyncScheduler{scheduler: s}, nil
}

func (r *resyncScheduler) Start() {
	r.scheduler.Start()
}

func (r *resyncScheduler) Stop() {
	if err := r.scheduler.Shutdown(); err != nil {
		slog.Warn("Failed to stop resync scheduler", logfields.Error(err))
	}
}
