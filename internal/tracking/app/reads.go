package app

import (
	"context"

	"tutor-track/internal/tracking/domain"
)

// GetJourney returns journey details to its participants: the owning trainer
// or the session's student. Terminal journeys stay readable (the history
// fallback when live data is gone).
func (s *TrackingService) GetJourney(ctx context.Context, userID, journeyID string) (*domain.Journey, error) {
	journey, err := s.journeys.GetByID(ctx, journeyID)
	if err != nil {
		return nil, err
	}
	if userID != journey.TrainerID && userID != journey.StudentID {
		return nil, domain.ErrAccessDenied
	}
	return journey, nil
}

// ActiveJourneyForSession returns the session's active journey, or nil when
// nothing is being tracked right now.
func (s *TrackingService) ActiveJourneyForSession(ctx context.Context, userID, sessionID string) (*domain.Journey, error) {
	session, err := s.sessions.Lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.sessionParticipant(ctx, session, userID) {
		return nil, domain.ErrAccessDenied
	}
	return s.journeys.ActiveBySession(ctx, sessionID)
}

// StatusView is the derived tracking state of a session.
type StatusView struct {
	SessionID string
	Status    domain.DisplayStatus
	Journey   *domain.Journey
}

// SessionStatus derives the display ladder from the session's most recent
// journey: no journey yet reads NOT_STARTED, an active one ON_THE_WAY, a
// corroborated arrival ARRIVED, and any other terminal state ENDED.
func (s *TrackingService) SessionStatus(ctx context.Context, userID, sessionID string) (*StatusView, error) {
	session, err := s.sessions.Lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.sessionParticipant(ctx, session, userID) {
		return nil, domain.ErrAccessDenied
	}

	latest, err := s.journeys.LatestBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	view := &StatusView{SessionID: sessionID, Status: domain.DisplayNotStarted}
	if latest == nil {
		return view, nil
	}
	view.Journey = latest
	switch {
	case latest.IsActive():
		view.Status = domain.DisplayOnTheWay
	case latest.EndReason != nil && *latest.EndReason == domain.ReasonArrived:
		view.Status = domain.DisplayArrived
	default:
		view.Status = domain.DisplayEnded
	}
	return view, nil
}

// sessionParticipant reports whether userID belongs to the session: the
// booked trainer, the student, or whoever currently holds the allocation.
func (s *TrackingService) sessionParticipant(ctx context.Context, session *domain.SessionInfo, userID string) bool {
	if userID == session.TrainerID || userID == session.StudentID {
		return true
	}
	owner, err := s.allocations.CurrentTrainer(ctx, session.AllocationID, s.now())
	return err == nil && owner != "" && owner == userID
}
