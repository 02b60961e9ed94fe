package reminder

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the reminder engine on a cron schedule.
type Scheduler struct {
	cron     *cron.Cron
	engine   *Engine
	logger   *slog.Logger
	schedule string
}

// NewScheduler creates a scheduler that runs the engine on the given
// cron expression, e.g. "0 8 * * *" for 08:00 daily.
func NewScheduler(engine *Engine, schedule string, logger *slog.Logger) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:     c,
		engine:   engine,
		logger:   logger,
		schedule: schedule,
	}
}

// Start registers the reminder job and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runOnce); err != nil {
		return err
	}
	s.logger.Info("scheduled daily reminder job", "schedule", s.schedule)
	s.cron.Start()
	return nil
}

// Stop gracefully stops the scheduler. The returned context is done
// once any in-flight run has finished.
func (s *Scheduler) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Scheduler) runOnce() {
	if _, err := s.engine.Run(context.Background()); err != nil {
		s.logger.Error("reminder run failed", "error", err)
	}
}
