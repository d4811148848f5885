// Package scheduler runs the daily match-expiry sweep.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/oggyb/groupmatch/internal/config"
)

const lockName = "match-expiry-sweep"

// Locker is a cluster-wide mutex. The Redis cache implements it.
type Locker interface {
	AcquireLock(ctx context.Context, name string, ttl time.Duration) (string, bool, error)
	ReleaseLock(ctx context.Context, name, token string) error
}

// Sweeper calls cleanup once a day at the configured hour. With a Locker,
// only one replica sweeps per run.
type Sweeper struct {
	cleanup func(ctx context.Context) (int64, error)
	locker  Locker
	hour    int
	loc     *time.Location
	lockTTL time.Duration
	logger  *slog.Logger

	Now func() time.Time
}

func NewSweeper(cleanup func(ctx context.Context) (int64, error), locker Locker, cfg config.Matching, logger *slog.Logger) *Sweeper {
	loc := cfg.DayLocation
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		cleanup: cleanup,
		locker:  locker,
		hour:    cfg.SweepHour,
		loc:     loc,
		lockTTL: 10 * time.Minute,
		logger:  logger,
		Now:     time.Now,
	}
}

// NextRun returns the first sweep time strictly after now.
func (s *Sweeper) NextRun(now time.Time) time.Time {
	lt := now.In(s.loc)
	next := time.Date(lt.Year(), lt.Month(), lt.Day(), s.hour, 0, 0, 0, s.loc)
	if !next.After(lt) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunOnce performs a single sweep. It reports false when another replica
// holds the lock.
func (s *Sweeper) RunOnce(ctx context.Context) (bool, int64, error) {
	if s.locker != nil {
		token, ok, err := s.locker.AcquireLock(ctx, lockName, s.lockTTL)
		if err != nil {
			return false, 0, err
		}
		if !ok {
			s.logger.Debug("sweep skipped, lock held elsewhere")
			return false, 0, nil
		}
		defer func() {
			if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), lockName, token); err != nil {
				s.logger.Warn("sweep lock release failed", "err", err)
			}
		}()
	}

	n, err := s.cleanup(ctx)
	return true, n, err
}

// Start blocks, sweeping daily until ctx is canceled.
func (s *Sweeper) Start(ctx context.Context) {
	for {
		now := s.Now()
		next := s.NextRun(now)
		s.logger.Info("next match sweep scheduled", "at", next)

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-timer.C:
			if _, n, err := s.RunOnce(ctx); err != nil {
				s.logger.Error("match sweep failed", "err", err)
			} else {
				s.logger.Info("match sweep finished", "expired", n)
			}
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}
