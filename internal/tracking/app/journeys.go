package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tutor-track/internal/shared/geo"
	"tutor-track/internal/tracking/domain"
)

// StartJourney opens tracking for a session. Only the trainer who currently
// owns the session's allocation may start; an active journey held by a
// different trainer is ended with reason trainer_replaced before the new one
// is created (substitution), while the same trainer starting twice is a
// duplicate.
func (s *TrackingService) StartJourney(ctx context.Context, trainerID, sessionID string) (*domain.Journey, error) {
	instance := "TrackingService.StartJourney"

	session, err := s.sessions.Lookup(ctx, sessionID)
	if err != nil {
		if !errors.Is(err, domain.ErrSessionNotFound) {
			s.logger.Error(instance, fmt.Errorf("session lookup failed: %w", err))
		}
		return nil, err
	}

	owner, err := s.currentOwner(ctx, session)
	if err != nil {
		s.logger.Error(instance, fmt.Errorf("owner resolution failed: %w", err))
		return nil, err
	}
	if trainerID != owner {
		s.logger.Warn(instance, fmt.Sprintf("start rejected: trainer %s does not own session %s (owner %s)", trainerID, sessionID, owner))
		return nil, domain.ErrNotOwner
	}

	existing, err := s.journeys.ActiveBySession(ctx, sessionID)
	if err != nil {
		s.logger.Error(instance, fmt.Errorf("active journey lookup failed: %w", err))
		return nil, err
	}
	if existing != nil {
		if existing.TrainerID == trainerID {
			return nil, domain.ErrDuplicateStart
		}
		// Caller is the current owner but another trainer still holds an
		// active journey: substitution. The old journey must be terminal and
		// its cache slot gone before the replacement exists.
		if err := s.forceEnd(ctx, existing, domain.ReasonTrainerReplaced); err != nil {
			s.logger.Error(instance, fmt.Errorf("replacing journey %s failed: %w", existing.ID, err))
			return nil, err
		}
		s.logger.Info(instance, fmt.Sprintf("journey %s replaced by substitute trainer %s", existing.ID, trainerID))
	}

	journey := &domain.Journey{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		TrainerID: trainerID,
		StudentID: session.StudentID,
		Status:    domain.StatusActive,
		StartedAt: s.now(),
	}

	err = s.journeys.Create(ctx, journey)
	if errors.Is(err, domain.ErrDuplicateStart) {
		// Lost a concurrent start on the partial unique index. If the winner
		// is another trainer we may still replace it; retry once.
		winner, lerr := s.journeys.ActiveBySession(ctx, sessionID)
		if lerr != nil {
			s.logger.Error(instance, fmt.Errorf("post-conflict lookup failed: %w", lerr))
			return nil, lerr
		}
		if winner == nil || winner.TrainerID == trainerID {
			return nil, domain.ErrDuplicateStart
		}
		if err := s.forceEnd(ctx, winner, domain.ReasonTrainerReplaced); err != nil {
			return nil, err
		}
		journey.StartedAt = s.now()
		err = s.journeys.Create(ctx, journey)
	}
	if err != nil {
		if !errors.Is(err, domain.ErrDuplicateStart) {
			s.logger.Error(instance, fmt.Errorf("create journey failed: %w", err))
		}
		return nil, err
	}

	s.tracker.Seed(journey.ID, journey.TrainerID, journey.SessionID, journey.StudentID)
	s.notify(ctx, domain.TrackingEvent{
		Kind:      domain.EventTrackingStarted,
		JourneyID: journey.ID,
		SessionID: journey.SessionID,
		TrainerID: journey.TrainerID,
		StudentID: journey.StudentID,
		Timestamp: journey.StartedAt,
	})

	s.logger.OK(instance, fmt.Sprintf("journey %s started [session=%s, trainer=%s]", journey.ID, sessionID, trainerID))
	return journey, nil
}

// EndJourney lets the owning trainer stop tracking without an arrival. The
// terminal row is durable before the cache slot disappears, so a ping racing
// the end either lands before eviction or is rejected, never resurrected.
func (s *TrackingService) EndJourney(ctx context.Context, trainerID, journeyID string) (*domain.Journey, error) {
	instance := "TrackingService.EndJourney"

	journey, err := s.journeys.GetByID(ctx, journeyID)
	if err != nil {
		return nil, err
	}
	if journey.TrainerID != trainerID {
		s.logger.Warn(instance, fmt.Sprintf("end rejected: trainer %s does not own journey %s", trainerID, journeyID))
		return nil, domain.ErrAccessDenied
	}
	if !journey.IsActive() {
		return nil, domain.ErrJourneyNotActive
	}

	endedAt := s.now()
	reason := domain.ReasonCancelled
	if err := s.journeys.End(ctx, journeyID, domain.TerminalStatusFor(reason), reason, endedAt); err != nil {
		return nil, err
	}
	s.tracker.Evict(journeyID)

	journey.Status = domain.TerminalStatusFor(reason)
	journey.EndReason = &reason
	journey.EndedAt = &endedAt

	s.notify(ctx, domain.TrackingEvent{
		Kind:      domain.EventTrackingEnded,
		JourneyID: journey.ID,
		SessionID: journey.SessionID,
		TrainerID: journey.TrainerID,
		StudentID: journey.StudentID,
		Reason:    string(reason),
		Timestamp: endedAt,
	})

	s.logger.OK(instance, fmt.Sprintf("journey %s ended [reason=%s]", journeyID, reason))
	return journey, nil
}

// MarkArrived corroborates a trainer's arrival claim against the last
// accepted position: the journey completes only when that position lies
// within the arrival radius of the student's home. The measured distance is
// returned to the caller whether or not the claim holds.
func (s *TrackingService) MarkArrived(ctx context.Context, trainerID, journeyID string) (*domain.Journey, float64, error) {
	instance := "TrackingService.MarkArrived"

	journey, err := s.journeys.GetByID(ctx, journeyID)
	if err != nil {
		return nil, 0, err
	}
	if journey.TrainerID != trainerID {
		s.logger.Warn(instance, fmt.Sprintf("arrival rejected: trainer %s does not own journey %s", trainerID, journeyID))
		return nil, 0, domain.ErrAccessDenied
	}
	if !journey.IsActive() {
		return nil, 0, domain.ErrJourneyNotActive
	}

	entry, ok := s.tracker.Get(journeyID)
	if !ok {
		return nil, 0, domain.ErrJourneyNotActive
	}
	if entry.Position == nil {
		return nil, 0, domain.ErrNoLocationFix
	}

	session, err := s.sessions.Lookup(ctx, journey.SessionID)
	if err != nil {
		s.logger.Error(instance, fmt.Errorf("session lookup failed: %w", err))
		return nil, 0, err
	}

	distance := geo.Distance(entry.Position.Latitude, entry.Position.Longitude, session.HomeLat, session.HomeLng)
	if distance > s.cfg.ArrivalRadiusM {
		s.logger.Warn(instance, fmt.Sprintf("arrival rejected: journey %s is %.0fm from home (radius %.0fm)", journeyID, distance, s.cfg.ArrivalRadiusM))
		return nil, distance, domain.ErrTooFarToArrive
	}

	endedAt := s.now()
	reason := domain.ReasonArrived
	if err := s.journeys.End(ctx, journeyID, domain.TerminalStatusFor(reason), reason, endedAt); err != nil {
		return nil, distance, err
	}
	s.tracker.Evict(journeyID)

	journey.Status = domain.TerminalStatusFor(reason)
	journey.EndReason = &reason
	journey.EndedAt = &endedAt

	s.notify(ctx, domain.TrackingEvent{
		Kind:      domain.EventTrainerArrived,
		JourneyID: journey.ID,
		SessionID: journey.SessionID,
		TrainerID: journey.TrainerID,
		StudentID: journey.StudentID,
		Reason:    string(reason),
		Timestamp: endedAt,
	})

	s.logger.OK(instance, fmt.Sprintf("journey %s arrived %.0fm from home", journeyID, distance))
	return journey, distance, nil
}

// currentOwner resolves who holds the session today: an allocation
// assignment covering the date wins, otherwise the trainer booked on the
// session row.
func (s *TrackingService) currentOwner(ctx context.Context, session *domain.SessionInfo) (string, error) {
	trainer, err := s.allocations.CurrentTrainer(ctx, session.AllocationID, s.now())
	if err != nil {
		return "", err
	}
	if trainer == "" {
		return session.TrainerID, nil
	}
	return trainer, nil
}

// forceEnd terminates a journey without a caller identity: substitution and
// the idle sweeper share it. A journey that already turned terminal under a
// concurrent end is treated as done, not an error.
func (s *TrackingService) forceEnd(ctx context.Context, journey *domain.Journey, reason domain.EndReason) error {
	endedAt := s.now()
	err := s.journeys.End(ctx, journey.ID, domain.TerminalStatusFor(reason), reason, endedAt)
	if err != nil && !errors.Is(err, domain.ErrJourneyNotActive) {
		return err
	}
	s.tracker.Evict(journey.ID)
	if err == nil {
		s.notify(ctx, domain.TrackingEvent{
			Kind:      domain.EventTrackingEnded,
			JourneyID: journey.ID,
			SessionID: journey.SessionID,
			TrainerID: journey.TrainerID,
			StudentID: journey.StudentID,
			Reason:    string(reason),
			Timestamp: endedAt,
		})
	}
	return nil
}

func (s *TrackingService) notify(ctx context.Context, evt domain.TrackingEvent) {
	if err := s.pub.PublishTracking(ctx, evt); err != nil {
		s.logger.Warn("TrackingService.notify", fmt.Sprintf("failed to publish %s for journey %s: %v", evt.Kind, evt.JourneyID, err))
	}
}
