// Package housekeeping runs periodic maintenance against the diary store.
package housekeeping

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"

	"pet-diary/pkg/logger"
)

type Purger interface {
	PurgeBatchRequests(ctx context.Context, cutoff time.Time) (int64, error)
}

type Metrics interface {
	ObservePurge(count int64)
}

type noopMetrics struct{}

func (noopMetrics) ObservePurge(int64) {}

type Config struct {
	Interval  time.Duration
	Retention time.Duration
	Timeout   time.Duration
}

// Job removes batch idempotency records older than the retention window.
type Job struct {
	purger  Purger
	clock   clockwork.Clock
	log     logger.Logger
	metrics Metrics
	cfg     Config
}

func NewJob(purger Purger, clk clockwork.Clock, log logger.Logger, metrics Metrics, cfg Config) *Job {
	if clk == nil {
		clk = clockwork.NewRealClock()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Job{purger: purger, clock: clk, log: log, metrics: metrics, cfg: cfg}
}

func (j *Job) Run(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, j.cfg.Timeout)
	defer cancel()

	cutoff := j.clock.Now().UTC().Add(-j.cfg.Retention)
	purged, err := j.purger.PurgeBatchRequests(ctx, cutoff)
	if err != nil {
		j.log.InternalError("housekeeping: purge batch requests failed", err, "cutoff", cutoff)
		return 0, err
	}
	j.metrics.ObservePurge(purged)
	if purged > 0 {
		j.log.Info("housekeeping: purged batch requests", "count", purged, "cutoff", cutoff)
	}
	return purged, nil
}

// Start schedules the job every cfg.Interval on a gocron scheduler driven by
// the job's clock. The caller owns Shutdown.
func (j *Job) Start(ctx context.Context) (gocron.Scheduler, error) {
	if j.cfg.Interval <= 0 {
		return nil, errors.New("housekeeping: interval must be positive")
	}
	if j.cfg.Retention <= 0 {
		return nil, errors.New("housekeeping: retention must be positive")
	}

	s, err := gocron.NewScheduler(gocron.WithClock(j.clock))
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(j.cfg.Interval),
		gocron.NewTask(func() {
			_, _ = j.Run(ctx)
		}),
		gocron.WithName("purge-batch-requests"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	s.Start()
	j.log.Info("housekeeping: scheduler started", "interval", j.cfg.Interval, "retention", j.cfg.Retention)
	return s, nil
}
