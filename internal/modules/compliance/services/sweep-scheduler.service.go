package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carelink-compliance-core/internal/app/config"
	"carelink-compliance-core/internal/modules/compliance/dto"
)

// SweepSchedulerService fires the sweep once per day at the configured
// time-of-day. Every trigger still goes through the lease, so a manual run or
// a second instance of the service never overlaps a scheduled one.
type SweepSchedulerService struct {
	engine *ExpirySweepService
	cfg    config.SweepConfig
	stop   chan struct{}
	done   chan struct{}
}

func NewSweepSchedulerService(engine *ExpirySweepService, cfg *config.Config) *SweepSchedulerService {
	return &SweepSchedulerService{
		engine: engine,
		cfg:    cfg.Sweep,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
}

// Start launches the scheduling loop in its own goroutine
func (s *SweepSchedulerService) Start() {
	go s.loop()
}

// Stop signals the loop and waits for it to drain, bounded by ctx
func (s *SweepSchedulerService) Stop(ctx context.Context) error {
	close(s.stop)
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("sweep scheduler did not stop in time: %w", ctx.Err())
	}
}

func (s *SweepSchedulerService) loop() {
	defer close(s.done)

	for {
		next := s.nextRunAt(time.Now())
		fmt.Printf("[SCHEDULER] next compliance sweep at %s\n", next.Format(time.RFC3339))

		timer := time.NewTimer(time.Until(next))
		select {
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		if _, err := s.engine.RunSweep(context.Background(), dto.TriggerSchedule); err != nil {
			if errors.Is(err, ErrSweepInProgress) {
				fmt.Printf("[SCHEDULER] scheduled sweep skipped: previous run still in flight\n")
				continue
			}
			fmt.Printf("[SCHEDULER] ❌ scheduled sweep failed: %v\n", err)
		}
	}
}

// nextRunAt computes the next occurrence of the configured time-of-day after now
func (s *SweepSchedulerService) nextRunAt(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(),
		s.cfg.HourOfDay, s.cfg.MinuteOfHour, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
