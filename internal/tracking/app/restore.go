package app

import (
	"context"
	"fmt"
)

// Restore re-seeds the tracker from durable state after a restart. Each
// active journey gets its slot back with the last mirrored ping as the
// sequence watermark, so pings the trainer app retransmits after the outage
// are rejected as stale instead of rewinding the position. Journeys whose
// trainer never comes back age out under the normal idle sweep.
func (s *TrackingService) Restore(ctx context.Context) error {
	instance := "TrackingService.Restore"

	active, err := s.journeys.ActiveJourneys(ctx)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	for _, j := range active {
		s.tracker.Seed(j.ID, j.TrainerID, j.SessionID, j.StudentID)

		last, err := s.history.LastForJourney(ctx, j.ID)
		if err != nil {
			s.logger.Warn(instance, fmt.Sprintf("mirror watermark lookup failed for journey %s: %v", j.ID, err))
			continue
		}
		if last == nil {
			continue
		}
		if _, err := s.tracker.ValidateAndApply(j.ID, j.TrainerID, last.Sequence, last.Position); err != nil {
			s.logger.Warn(instance, fmt.Sprintf("replaying watermark for journey %s failed: %v", j.ID, err))
		}
	}

	if len(active) > 0 {
		s.logger.OK(instance, fmt.Sprintf("restored %d active journey(s) into the tracker", len(active)))
	}
	return nil
}
