// Package crontab schedules the service's housekeeping: stale job recovery,
// terminal job purging, tool manifest refresh and queue depth reporting.
package crontab

import (
	"context"
	"time"

	"github.com/mileusna/crontab"
	"github.com/rs/zerolog"

	"homehub/assistant-api/internal/config"
	"homehub/assistant-api/internal/domain/job"
	"homehub/assistant-api/internal/infrastructure/metrics"
	"homehub/assistant-api/internal/infrastructure/toolservice"
	"homehub/assistant-api/internal/utils/platformerrors"
)

// CronJobTimeout bounds each scheduled run.
const CronJobTimeout = 2 * time.Minute

// Crontab owns the housekeeping schedule.
type Crontab struct {
	ctab   *crontab.Crontab
	queue  job.Queue
	loader *toolservice.Loader
	cfg    *config.Config
	log    zerolog.Logger
}

// NewCrontab builds the scheduler with its collaborators.
func NewCrontab(queue job.Queue, loader *toolservice.Loader, cfg *config.Config, log zerolog.Logger) *Crontab {
	return &Crontab{
		ctab:   crontab.New(),
		queue:  queue,
		loader: loader,
		cfg:    cfg,
		log:    log.With().Str("component", "crontab").Logger(),
	}
}

// Run installs the schedule and blocks until the context ends.
func (c *Crontab) Run(ctx context.Context) error {
	// Populate the tool registry and the depth gauge once on start.
	startCtx, cancel := context.WithTimeout(ctx, CronJobTimeout)
	c.refreshToolManifest(startCtx)
	c.reportQueueDepth(startCtx)
	cancel()

	if err := c.ctab.AddJob("*/5 * * * *", func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
		defer cancel()
		c.requeueStaleJobs(jobCtx)
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add stale job recovery")
	}

	if err := c.ctab.AddJob("0 * * * *", func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
		defer cancel()
		c.purgeTerminalJobs(jobCtx)
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add terminal job purge")
	}

	if err := c.ctab.AddJob("*/10 * * * *", func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
		defer cancel()
		c.refreshToolManifest(jobCtx)
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add manifest refresh")
	}

	if err := c.ctab.AddJob("* * * * *", func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), CronJobTimeout)
		defer cancel()
		c.reportQueueDepth(jobCtx)
	}); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerInfrastructure, err, "failed to add queue depth report")
	}

	c.log.Info().Msg("housekeeping scheduled")

	<-ctx.Done()
	c.ctab.Shutdown()
	return nil
}

// requeueStaleJobs returns stuck processing jobs to the queue. A job past
// the attempt bound fails instead of cycling forever.
func (c *Crontab) requeueStaleJobs(ctx context.Context) {
	staleAfter := c.cfg.StaleJobAfter
	if staleAfter < c.cfg.TaskTimeout {
		staleAfter = c.cfg.TaskTimeout
	}
	requeued, err := c.queue.RequeueStale(ctx, staleAfter, c.cfg.JobMaxAttempts)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to requeue stale jobs")
		return
	}
	if requeued > 0 {
		c.log.Info().Int("requeued", requeued).Msg("stale jobs returned to queue")
	}
}

func (c *Crontab) purgeTerminalJobs(ctx context.Context) {
	purged, err := c.queue.PurgeTerminal(ctx, c.cfg.JobRetention)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to purge terminal jobs")
		return
	}
	if purged > 0 {
		c.log.Info().Int("purged", purged).Msg("terminal jobs purged")
	}
}

func (c *Crontab) refreshToolManifest(ctx context.Context) {
	if err := c.loader.Refresh(ctx); err != nil {
		c.log.Error().Err(err).Msg("failed to refresh tool manifest")
	}
}

func (c *Crontab) reportQueueDepth(ctx context.Context) {
	depth, err := c.queue.Depth(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to read queue depth")
		return
	}
	metrics.SetQueueDepth(depth)
}
