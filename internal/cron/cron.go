package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/Marga-Ghale/ora-committee-backend/internal/metrics"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	sweepLockName = "resolve-open-motions"
	sweepTimeout  = 30 * time.Second
)

// Resolver closes decided motions. Implemented by service.VoteService.
type Resolver interface {
	ResolveOpenMotions(ctx context.Context) (int, error)
}

// Locker is a cross-instance mutex. An empty token from TryLock means
// another instance holds the lock.
type Locker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (string, error)
	Unlock(ctx context.Context, name, token string) error
}

// Scheduler handles scheduled tasks
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	resolver Resolver
	locker   Locker
	metrics  *metrics.Metrics
	log      *zap.Logger
}

// NewScheduler creates a scheduler for the vote resolution sweep. locker
// and m may be nil.
func NewScheduler(schedule string, resolver Resolver, locker Locker, m *metrics.Metrics, logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		schedule: schedule,
		resolver: resolver,
		locker:   locker,
		metrics:  m,
		log:      logger,
	}
}

// Start registers the sweep and starts the scheduler
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, func() { s.Sweep(context.Background()) }); err != nil {
		return fmt.Errorf("invalid resolve schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.log.Info("scheduler started", zap.String("schedule", s.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// Sweep runs one resolution pass. When a locker is set only one instance
// sweeps at a time; if the lock store fails the pass runs unlocked since
// closing a motion is a compare-and-set.
func (s *Scheduler) Sweep(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	if s.locker != nil {
		token, err := s.locker.TryLock(ctx, sweepLockName, sweepTimeout)
		switch {
		case err != nil:
			s.log.Warn("sweep lock unavailable, running unlocked", zap.Error(err))
		case token == "":
			s.log.Debug("sweep skipped, lock held elsewhere")
			s.metrics.SweepRun("skipped", 0)
			return
		default:
			defer func() {
				if err := s.locker.Unlock(context.Background(), sweepLockName, token); err != nil {
					s.log.Warn("sweep unlock failed", zap.Error(err))
				}
			}()
		}
	}

	start := time.Now()
	resolved, err := s.resolver.ResolveOpenMotions(ctx)
	if err != nil {
		s.log.Error("sweep failed", zap.Int("resolved", resolved), zap.Error(err))
		s.metrics.SweepRun("error", resolved)
		return
	}
	s.metrics.SweepRun("ok", resolved)
	if resolved > 0 {
		s.log.Info("sweep closed motions", zap.Int("resolved", resolved), zap.Duration("took", time.Since(start)))
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
