// Package scheduler runs the daily ROI sweep on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"investa/internal/services/roi"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Minute

// Sweeper is the job the scheduler triggers.
type Sweeper interface {
	RunDaily(ctx context.Context) (*roi.SweepResult, error)
}

type Scheduler struct {
	cron    *cron.Cron
	job     Sweeper
	logger  *zap.Logger
	timeout time.Duration
	// startup tracks the run-on-start sweep, which cron does not own.
	startup sync.WaitGroup
}

// New parses spec (standard five-field cron) in loc.
func New(spec string, loc *time.Location, job Sweeper, logger *zap.Logger) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("scheduler: job is required")
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("scheduler")
	cl := cronLogger{logger.Sugar()}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		job:     job,
		logger:  logger,
		timeout: defaultTimeout,
	}
	if _, err := s.cron.AddFunc(spec, func() { s.Run(context.Background()) }); err != nil {
		return nil, fmt.Errorf("scheduler: invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

// Run performs one sweep and logs its outcome.
func (s *Scheduler) Run(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.job.RunDaily(ctx)
	switch {
	case errors.Is(err, roi.ErrSweepInProgress):
		s.logger.Info("sweep already running elsewhere")
	case err != nil:
		s.logger.Error("daily ROI sweep failed", zap.Error(err))
	case !result.Ran():
		s.logger.Info("daily ROI sweep skipped", zap.String("reason", result.SkipReason))
	default:
		s.logger.Info("daily ROI sweep finished",
			zap.Int("processed", result.Processed),
			zap.Int("created", result.Created),
			zap.Int("skipped", result.Skipped),
			zap.Int("failed", result.Failed),
			zap.String("total", result.Total.StringFixed(2)),
		)
	}
}

// Start begins scheduling. With runOnStart the sweep also runs immediately,
// which is safe because a day is only ever credited once.
func (s *Scheduler) Start(runOnStart bool) {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info("ROI sweep scheduled", zap.Time("next", e.Next))
	}
	if runOnStart {
		s.startup.Add(1)
		go func() {
			defer s.startup.Done()
			s.Run(context.Background())
		}()
	}
}

// Stop halts scheduling and waits for running sweeps, scheduled or started
// by Start, until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	startup := make(chan struct{})
	go func() {
		s.startup.Wait()
		close(startup)
	}()

	for _, done := range []<-chan struct{}{s.cron.Stop().Done(), startup} {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
