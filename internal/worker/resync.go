package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

type resyncService interface {
	ResyncRepeating(ctx context.Context, strategy retry.Strategy) error
}

// Resync periodically re-registers the next occurrence of every incomplete
// repeating reminder. Without it a repeating reminder would alert exactly
// once: only the nearest occurrence is ever registered with the back-ends.
type Resync struct {
	cron     *cron.Cron
	service  resyncService
	strategy retry.Strategy
}

// NewResync creates the resync job in the given timezone.
func NewResync(svc resyncService, strategy retry.Strategy, loc *time.Location) *Resync {
	return &Resync{
		cron:     cron.New(cron.WithLocation(loc)),
		service:  svc,
		strategy: strategy,
	}
}

// Start schedules the hourly pass and blocks until ctx is cancelled.
func (r *Resync) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc("@hourly", func() {
		if err := r.service.ResyncRepeating(ctx, r.strategy); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to resync repeating reminders")
		}
	})
	if err != nil {
		return err
	}

	r.cron.Start()
	zlog.Logger.Info().Msg("resync job started")

	<-ctx.Done()

	stopCtx := r.cron.Stop()
	<-stopCtx.Done()
	zlog.Logger.Info().Msg("resync job stopped")

	return nil
}
