package attendance

import (
	"context"
	"fmt"
	"log/slog"

	"SchoolScan/internal/lib/sl"
	"github.com/robfig/cron/v3"
)

// Scheduler owns the timers around the sweeps: the one-shot startup and
// previous-day passes, and the daily cutoff pass which cron re-arms after
// every run no matter how the sweep body ended. Tests call the sweeps on
// the Service directly and never need a Scheduler.
type Scheduler struct {
	svc  *Service
	cron *cron.Cron
	log  *slog.Logger
}

func NewScheduler(svc *Service, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		svc: svc,
		log: logger.With(sl.Module("attendance.scheduler")),
	}
}

// Start launches the startup sweeps in the background and arms the daily
// cutoff job. Process start is never blocked on a sweep.
func (s *Scheduler) Start() error {
	go func() {
		if result, err := s.svc.RunStartupSweep(context.Background()); err != nil {
			s.log.With(sl.Err(err)).Error("startup sweep failed")
		} else {
			s.log.With(
				slog.Int("closed", result.Closed),
			).Info("startup sweep done")
		}

		if result, err := s.svc.RunPreviousDaySweep(context.Background()); err != nil {
			s.log.With(sl.Err(err)).Error("previous day sweep failed")
		} else {
			s.log.With(
				slog.Int("closed", result.Closed),
			).Info("previous day sweep done")
		}
	}()

	spec := fmt.Sprintf("%d %d * * *", s.svc.cutoffMinute, s.svc.cutoffHour)

	s.cron = cron.New(cron.WithLocation(s.svc.Location()))
	_, err := s.cron.AddFunc(spec, func() {
		result, err := s.svc.RunCutoffSweep(context.Background())
		if err != nil {
			s.log.With(sl.Err(err)).Error("cutoff sweep failed")
			return
		}
		s.log.With(
			slog.Int("students", result.Students),
			slog.Int("closed", result.Closed),
			slog.Int("failures", len(result.Failures)),
		).Info("cutoff sweep done")
	})
	if err != nil {
		return fmt.Errorf("arm cutoff sweep: %w", err)
	}

	s.cron.Start()
	s.log.With(slog.String("schedule", spec)).Info("cutoff sweep scheduled")
	return nil
}

// Stop halts the cron loop. Running jobs finish on their own.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}
