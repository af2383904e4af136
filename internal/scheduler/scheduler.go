// Package scheduler runs the periodic report refresh and raw record retention.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"
	errwrap "github.com/pkg/errors"
	"go.uber.org/zap"
)

type Refresher interface {
	RefreshAll(ctx context.Context) error
}

type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int64, error)
}

type Options struct {
	RefreshInterval time.Duration
	RecordRetention time.Duration
}

type Scheduler struct {
	cron      gocron.Scheduler
	refresher Refresher
	pruner    Pruner
	opts      Options
	log       *zap.Logger
	now       func() time.Time
}

func New(refresher Refresher, pruner Pruner, opts Options, log *zap.Logger) (*Scheduler, error) {
	cron, err := gocron.NewScheduler(gocron.WithLogger(zapLogger{log.Sugar()}))
	if err != nil {
		return nil, errwrap.Wrap(err, "gocron.NewScheduler")
	}

	return &Scheduler{
		cron:      cron,
		refresher: refresher,
		pruner:    pruner,
		opts:      opts,
		log:       log,
		now:       time.Now,
	}, nil
}

// Start registers the jobs and starts the scheduler. A zero interval disables
// its job.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.opts.RefreshInterval > 0 {
		_, err := s.cron.NewJob(
			gocron.DurationJob(s.opts.RefreshInterval),
			gocron.NewTask(s.refresh),
			gocron.WithName("refresh-reports"),
			gocron.WithContext(ctx),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			return errwrap.Wrap(err, "Scheduler.Start refresh-reports")
		}
	}

	if s.opts.RecordRetention > 0 {
		_, err := s.cron.NewJob(
			gocron.DurationJob(time.Hour),
			gocron.NewTask(s.prune),
			gocron.WithName("prune-records"),
			gocron.WithContext(ctx),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
			gocron.WithStartAt(gocron.WithStartImmediately()),
		)
		if err != nil {
			return errwrap.Wrap(err, "Scheduler.Start prune-records")
		}
	}

	s.cron.Start()
	s.log.Info("scheduler started",
		zap.Duration("refresh_interval", s.opts.RefreshInterval),
		zap.Duration("record_retention", s.opts.RecordRetention),
	)
	return nil
}

func (s *Scheduler) Shutdown() error {
	return s.cron.Shutdown()
}

func (s *Scheduler) refresh(ctx context.Context) {
	start := s.now()
	if err := s.refresher.RefreshAll(ctx); err != nil {
		s.log.Error("scheduled refresh failed", zap.Error(err))
		return
	}
	s.log.Info("scheduled refresh done", zap.Duration("took", s.now().Sub(start)))
}

func (s *Scheduler) prune(ctx context.Context) {
	before := s.now().Add(-s.opts.RecordRetention)
	n, err := s.pruner.Prune(ctx, before)
	if err != nil {
		s.log.Error("record retention failed", zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("pruned raw records", zap.Int64("deleted", n), zap.Time("before", before))
	}
}

type zapLogger struct {
	s *zap.SugaredLogger
}

func (l zapLogger) Debug(msg string, args ...any) { l.s.Debugw(msg, args...) }
func (l zapLogger) Error(msg string, args ...any) { l.s.Errorw(msg, args...) }
func (l zapLogger) Info(msg string, args ...any)  { l.s.Infow(msg, args...) }
func (l zapLogger) Warn(msg string, args ...any)  { l.s.Warnw(msg, args...) }
