// Package scheduler runs the nightly housekeeping: reminder cycle rollover
// and report cache invalidation, shortly after midnight in the business
// timezone.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/kulfiwala/backend/internal/config"
	"github.com/kulfiwala/backend/internal/service/reminders"
	"github.com/kulfiwala/backend/internal/service/reporting"
)

// Scheduler manages the recurring jobs.
type Scheduler struct {
	cron         *cron.Cron
	remindersSvc *reminders.Service
	reportingSvc *reporting.Service
	cfg          config.Config
	loc          *time.Location
	logger       *zap.Logger
}

// NewScheduler creates the scheduler with jobs evaluated in the business
// timezone.
func NewScheduler(cfg config.Config, loc *time.Location, remindersSvc *reminders.Service, reportingSvc *reporting.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:         cron.New(cron.WithLocation(loc)),
		remindersSvc: remindersSvc,
		reportingSvc: reportingSvc,
		cfg:          cfg,
		loc:          loc,
		logger:       logger.Named("scheduler"),
	}
}

// Start registers and starts the jobs.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", zap.String("rollover", s.cfg.Scheduler.RolloverCron))

	if _, err := s.cron.AddFunc(s.cfg.Scheduler.RolloverCron, s.nightlyRollover); err != nil {
		s.logger.Error("failed to schedule nightly rollover", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) nightlyRollover() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s.logger.Info("running nightly rollover")
	if err := s.remindersSvc.RunRollover(ctx); err != nil {
		s.logger.Error("reminder rollover failed", zap.Error(err))
	}

	// A new business date started; yesterday's cached report is stale.
	now := time.Now().In(s.loc)
	s.reportingSvc.Invalidate(ctx, now.Format("2006"), now.Format("01"))
	prev := now.AddDate(0, 0, -1)
	if prev.Month() != now.Month() {
		s.reportingSvc.Invalidate(ctx, prev.Format("2006"), prev.Format("01"))
	}
}
