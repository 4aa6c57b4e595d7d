package activity

import (
	"context"
	"time"

	"github.com/Vinyl-Lilith/GreenGiant/internal/infrastructure/logging"
)

// Purger deletes rows older than a cutoff. Implemented by the activity and
// alert repositories.
type Purger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper enforces retention with explicit periodic deletes rather than a
// storage-engine TTL, so the retention windows are visible in one place and
// testable without a clock inside the database.
type Sweeper struct {
	activity    Purger
	alerts      Purger
	activityAge time.Duration
	alertAge    time.Duration
	interval    time.Duration
	logger      *logging.Logger
}

// NewSweeper creates a sweeper over the two retained stores. Ages and
// interval come from config (defaults: activity 30 days, alerts 7 days,
// sweep hourly).
func NewSweeper(activity, alerts Purger, activityAge, alertAge, interval time.Duration, logger *logging.Logger) *Sweeper {
	return &Sweeper{
		activity:    activity,
		alerts:      alerts,
		activityAge: activityAge,
		alertAge:    alertAge,
		interval:    interval,
		logger:      logger,
	}
}

// Run sweeps once immediately, then on every tick until the context is
// cancelled. Intended to run as a goroutine from main.
func (s *Sweeper) Run(ctx context.Context) {
	s.Sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep performs one retention pass. Failures are logged and do not stop
// future passes.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := time.Now().UTC()

	if n, err := s.activity.DeleteOlderThan(ctx, now.Add(-s.activityAge)); err != nil {
		s.logger.Error("activity retention sweep failed", "error", err)
	} else if n > 0 {
		s.logger.Info("activity records purged", "count", n)
	}

	if n, err := s.alerts.DeleteOlderThan(ctx, now.Add(-s.alertAge)); err != nil {
		s.logger.Error("alert retention sweep failed", "error", err)
	} else if n > 0 {
		s.logger.Info("alerts purged", "count", n)
	}
}
