package app

import (
	"context"
	"fmt"
	"time"

	"tutor-track/internal/shared/validation"
	"tutor-track/internal/tracking/domain"
)

// UpdateLocation is the ping hot path: validate, apply against the tracker
// cache, then mirror and fan out asynchronously. No durable read or write
// happens before the caller gets an answer.
func (s *TrackingService) UpdateLocation(ctx context.Context, trainerID, journeyID string, ping domain.Position) (domain.TrackerEntry, error) {
	instance := "TrackingService.UpdateLocation"

	if err := validation.ValidateCoordinates(ping.Latitude, ping.Longitude); err != nil {
		s.logger.Warn(instance, fmt.Sprintf("invalid coordinates on journey %s: lat=%.4f, lng=%.4f", journeyID, ping.Latitude, ping.Longitude))
		return domain.TrackerEntry{}, domain.ErrInvalidCoordinates
	}
	if err := validation.ValidateSequence(ping.Sequence); err != nil {
		return domain.TrackerEntry{}, domain.ErrInvalidSequence
	}

	// Server receipt time; client clocks are not trusted.
	ping.RecordedAt = s.now()

	entry, err := s.tracker.ValidateAndApply(journeyID, trainerID, ping.Sequence, ping)
	if err != nil {
		return domain.TrackerEntry{}, err
	}

	select {
	case s.mirrorQ <- domain.PositionRecord{JourneyID: journeyID, Position: *entry.Position}:
	default:
		s.logger.Warn(instance, fmt.Sprintf("mirror queue full, dropping ping %d for journey %s", ping.Sequence, journeyID))
	}

	evt := domain.LocationEvent{
		JourneyID:  journeyID,
		SessionID:  entry.SessionID,
		TrainerID:  entry.TrainerID,
		StudentID:  entry.StudentID,
		Sequence:   entry.Position.Sequence,
		Latitude:   entry.Position.Latitude,
		Longitude:  entry.Position.Longitude,
		AccuracyM:  entry.Position.AccuracyM,
		SpeedKmh:   entry.Position.SpeedKmh,
		HeadingDeg: entry.Position.HeadingDeg,
		RecordedAt: entry.Position.RecordedAt,
	}
	if err := s.pub.PublishLocation(ctx, evt); err != nil {
		s.logger.Warn(instance, fmt.Sprintf("failed to publish location event for journey %s: %v", journeyID, err))
	}

	return entry, nil
}

// LiveView is the read model behind a student's live-location poll. Position
// stays null until the first accepted ping, and reads as null again once the
// journey ends or when the caller is not the journey's student, so probing
// ids learns nothing.
type LiveView struct {
	JourneyID    string
	Position     *domain.Position
	LastSequence int64
	UpdatedAt    *time.Time
}

// GetLiveLocation serves the student's poll straight from the tracker cache.
func (s *TrackingService) GetLiveLocation(ctx context.Context, studentID, journeyID string) (*LiveView, error) {
	view := &LiveView{JourneyID: journeyID}

	entry, ok := s.tracker.Get(journeyID)
	if !ok || entry.StudentID != studentID {
		return view, nil
	}

	view.LastSequence = entry.LastSequence
	if entry.Position != nil {
		pos := *entry.Position
		view.Position = &pos
		at := entry.UpdatedAt
		view.UpdatedAt = &at
	}
	return view, nil
}
