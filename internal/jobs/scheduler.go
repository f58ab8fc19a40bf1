package jobs

import (
	"context"
	"fmt"
	"time"

	"chiringuito/internal/config"
	"chiringuito/internal/logging"
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

type staleOrderDeleter interface {
	DeleteStale(ctx context.Context, before time.Time) (int64, error)
}

// SessionPurger drops expired sessions from a process-local store.
type SessionPurger interface {
	PurgeExpired() int
}

// Scheduler runs the cart housekeeping jobs.
type Scheduler struct {
	scheduler gocron.Scheduler
	orders    staleOrderDeleter
	sessions  SessionPurger
	cfg       config.SweeperConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewScheduler registers the stale order sweep, and the session purge when sessions is
// not nil. Nothing is registered when cfg.Interval is zero.
func NewScheduler(orders staleOrderDeleter, sessions SessionPurger, cfg config.SweeperConfig, logger *zap.Logger) (*Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	s := &Scheduler{
		scheduler: scheduler,
		orders:    orders,
		sessions:  sessions,
		cfg:       cfg,
		logger:    logging.OrNop(logger).Named("jobs"),
		now:       time.Now,
	}
	if cfg.Interval <= 0 {
		return s, nil
	}

	if _, err := scheduler.NewJob(
		gocron.DurationJob(cfg.Interval),
		gocron.NewTask(s.SweepOrders, context.Background()),
		gocron.WithName("stale-order-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	); err != nil {
		return nil, fmt.Errorf("register order sweep: %w", err)
	}
	if sessions != nil {
		if _, err := scheduler.NewJob(
			gocron.DurationJob(cfg.Interval),
			gocron.NewTask(s.PurgeSessions),
			gocron.WithName("session-purge"),
		); err != nil {
			return nil, fmt.Errorf("register session purge: %w", err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.Int("jobs", len(s.scheduler.Jobs())))
	s.scheduler.Start()
}

func (s *Scheduler) Stop() error {
	return s.scheduler.Shutdown()
}

// SweepOrders deletes pending orders untouched for longer than the configured TTL.
func (s *Scheduler) SweepOrders(ctx context.Context) error {
	before := s.now().Add(-s.cfg.OrderTTL)
	n, err := s.orders.DeleteStale(ctx, before)
	if err != nil {
		s.logger.Error("sweep stale orders", zap.Error(err))
		return err
	}
	if n > 0 {
		s.logger.Info("swept stale orders", zap.Int64("deleted", n), zap.Time("before", before))
	}
	return nil
}

func (s *Scheduler) PurgeSessions() {
	if n := s.sessions.PurgeExpired(); n > 0 {
		s.logger.Debug("purged expired sessions", zap.Int("count", n))
	}
}
