package app

import (
	"context"
	"fmt"

	"tutor-track/internal/shared/geo"
	"tutor-track/internal/shared/validation"
	"tutor-track/internal/tracking/domain"
)

// CheckLocationSafety measures how far a reported position strays from the
// session's home. The radius is deliberately coarse, an order of magnitude
// above the arrival radius: it flags a trainer in the wrong part of town,
// not one parked on the wrong street.
func (s *TrackingService) CheckLocationSafety(ctx context.Context, userID, sessionID string, lat, lng float64) (*domain.SafetyReport, error) {
	instance := "TrackingService.CheckLocationSafety"

	if err := validation.ValidateCoordinates(lat, lng); err != nil {
		return nil, domain.ErrInvalidCoordinates
	}

	session, err := s.sessions.Lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !s.sessionParticipant(ctx, session, userID) {
		return nil, domain.ErrAccessDenied
	}

	distance := geo.Distance(lat, lng, session.HomeLat, session.HomeLng)
	report := &domain.SafetyReport{
		Safe:           distance <= s.cfg.SafetyRadiusM,
		DistanceMeters: distance,
	}
	if !report.Safe {
		bearing := geo.Bearing(session.HomeLat, session.HomeLng, lat, lng)
		report.Alert = fmt.Sprintf("position is %.1f km %s of the expected location", distance/1000, geo.CompassDirection(bearing))
		s.logger.Warn(instance, fmt.Sprintf("safety alert for session %s: %s", sessionID, report.Alert))
	}
	return report, nil
}
