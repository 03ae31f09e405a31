package api

import (
	"time"

	"tutor-track/internal/tracking/app"
	"tutor-track/internal/tracking/domain"
)

type startJourneyRequest struct {
	SessionID string `json:"session_id"`
}

type journeyResponse struct {
	JourneyID string     `json:"journey_id"`
	SessionID string     `json:"session_id"`
	TrainerID string     `json:"trainer_id"`
	StudentID string     `json:"student_id"`
	Status    string     `json:"status"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	EndReason *string    `json:"end_reason,omitempty"`
}

func toJourneyResponse(j *domain.Journey) *journeyResponse {
	resp := &journeyResponse{
		JourneyID: j.ID,
		SessionID: j.SessionID,
		TrainerID: j.TrainerID,
		StudentID: j.StudentID,
		Status:    string(j.Status),
		StartedAt: j.StartedAt,
		EndedAt:   j.EndedAt,
	}
	if j.EndReason != nil {
		reason := string(*j.EndReason)
		resp.EndReason = &reason
	}
	return resp
}

type locationRequest struct {
	Sequence   int64    `json:"sequence"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	AccuracyM  *float64 `json:"accuracy_m,omitempty"`
	SpeedKmh   *float64 `json:"speed_kmh,omitempty"`
	HeadingDeg *float64 `json:"heading_deg,omitempty"`
}

type locationResponse struct {
	Accepted bool   `json:"accepted"`
	Sequence int64  `json:"sequence,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type endJourneyRequest struct {
	Reason string `json:"reason,omitempty"`
}

type arrivedResponse struct {
	JourneyID      string  `json:"journey_id"`
	Status         string  `json:"status"`
	DistanceMeters float64 `json:"distance_meters"`
}

type arrivalRejectedResponse struct {
	Error          string  `json:"error"`
	DistanceMeters float64 `json:"distance_meters"`
}

type positionView struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	AccuracyM  *float64  `json:"accuracy_m,omitempty"`
	SpeedKmh   *float64  `json:"speed_kmh,omitempty"`
	HeadingDeg *float64  `json:"heading_deg,omitempty"`
	Sequence   int64     `json:"sequence"`
	RecordedAt time.Time `json:"recorded_at"`
}

// liveResponse always carries the position key; it reads null until data is
// both present and visible to the caller.
type liveResponse struct {
	JourneyID    string        `json:"journey_id"`
	Position     *positionView `json:"position"`
	LastSequence int64         `json:"last_sequence,omitempty"`
	UpdatedAt    *time.Time    `json:"updated_at,omitempty"`
}

func toLiveResponse(view *app.LiveView) *liveResponse {
	resp := &liveResponse{
		JourneyID:    view.JourneyID,
		LastSequence: view.LastSequence,
		UpdatedAt:    view.UpdatedAt,
	}
	if view.Position != nil {
		resp.Position = &positionView{
			Latitude:   view.Position.Latitude,
			Longitude:  view.Position.Longitude,
			AccuracyM:  view.Position.AccuracyM,
			SpeedKmh:   view.Position.SpeedKmh,
			HeadingDeg: view.Position.HeadingDeg,
			Sequence:   view.Position.Sequence,
			RecordedAt: view.Position.RecordedAt,
		}
	}
	return resp
}

type sessionJourneyResponse struct {
	SessionID string           `json:"session_id"`
	Journey   *journeyResponse `json:"journey"`
}

type sessionStatusResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
	JourneyID string `json:"journey_id,omitempty"`
}

type safetyCheckRequest struct {
	SessionID string  `json:"session_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type safetyCheckResponse struct {
	Safe           bool    `json:"safe"`
	DistanceMeters float64 `json:"distance_meters"`
	Alert          string  `json:"alert,omitempty"`
}

type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type wsEnvelope struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}
