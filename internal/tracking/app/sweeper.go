package app

import (
	"context"
	"fmt"
	"time"

	"tutor-track/internal/tracking/domain"
)

// RunSweeper periodically force-ends journeys whose trainer stopped pinging.
// Trainers who lose signal mid-route get the full idle window to come back;
// a ping landing before the sweep refreshes the slot.
func (s *TrackingService) RunSweeper(ctx context.Context) {
	instance := "TrackingService.RunSweeper"
	ticker := time.NewTicker(s.cfg.SweepInterval())
	defer ticker.Stop()
	s.logger.Info(instance, fmt.Sprintf("idle sweeper started [timeout=%s, interval=%s]", s.cfg.IdleTimeout(), s.cfg.SweepInterval()))

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(instance, "idle sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass: tracker entries idle past the window first, then
// durable active rows with no tracker slot (a crash can land between the
// journey insert and the seed; those rows would otherwise stay active
// forever).
func (s *TrackingService) Sweep(ctx context.Context) {
	instance := "TrackingService.Sweep"
	cutoff := s.now().Add(-s.cfg.IdleTimeout())

	for _, entry := range s.tracker.Snapshot() {
		if entry.UpdatedAt.After(cutoff) {
			continue
		}
		journey := &domain.Journey{
			ID:        entry.JourneyID,
			SessionID: entry.SessionID,
			TrainerID: entry.TrainerID,
			StudentID: entry.StudentID,
		}
		if err := s.forceEnd(ctx, journey, domain.ReasonTimeout); err != nil {
			s.logger.Error(instance, fmt.Errorf("sweeping journey %s failed: %w", entry.JourneyID, err))
			continue
		}
		s.logger.Warn(instance, fmt.Sprintf("journey %s timed out [last update %s]", entry.JourneyID, entry.UpdatedAt.Format(time.RFC3339)))
	}

	active, err := s.journeys.ActiveJourneys(ctx)
	if err != nil {
		s.logger.Error(instance, fmt.Errorf("orphan scan failed: %w", err))
		return
	}
	for _, j := range active {
		if _, ok := s.tracker.Get(j.ID); ok {
			continue
		}
		if j.StartedAt.After(cutoff) {
			continue
		}
		if err := s.forceEnd(ctx, j, domain.ReasonTimeout); err != nil {
			s.logger.Error(instance, fmt.Errorf("sweeping orphan journey %s failed: %w", j.ID, err))
			continue
		}
		s.logger.Warn(instance, fmt.Sprintf("orphan journey %s timed out [started %s]", j.ID, j.StartedAt.Format(time.RFC3339)))
	}
}
