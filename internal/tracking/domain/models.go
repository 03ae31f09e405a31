package domain

import "time"

type JourneyStatus string

const (
	StatusActive    JourneyStatus = "active"
	StatusCompleted JourneyStatus = "completed"
	StatusCancelled JourneyStatus = "cancelled"
)

type EndReason string

const (
	ReasonArrived         EndReason = "arrived"
	ReasonCancelled       EndReason = "cancelled"
	ReasonTimeout         EndReason = "timeout"
	ReasonTrainerReplaced EndReason = "trainer_replaced"
)

// TerminalStatusFor maps an end reason to the terminal status a journey
// lands in: a corroborated arrival completes the journey, everything else
// cancels it.
func TerminalStatusFor(reason EndReason) JourneyStatus {
	if reason == ReasonArrived {
		return StatusCompleted
	}
	return StatusCancelled
}

// Journey is one trainer's single trip to a student's home for one tutoring
// session. Journeys are never reused: a substitute trainer always gets a new
// one.
type Journey struct {
	ID        string
	SessionID string
	TrainerID string
	StudentID string
	Status    JourneyStatus
	StartedAt time.Time
	EndedAt   *time.Time
	EndReason *EndReason
	CreatedAt time.Time
}

func (j *Journey) IsActive() bool {
	return j != nil && j.Status == StatusActive
}

// DisplayStatus is the derived per-session tracking state. It is never
// stored; it is computed from journey rows on every read.
type DisplayStatus string

const (
	DisplayNotStarted DisplayStatus = "NOT_STARTED"
	DisplayOnTheWay   DisplayStatus = "ON_THE_WAY"
	DisplayArrived    DisplayStatus = "ARRIVED"
	DisplayEnded      DisplayStatus = "ENDED"
)

// Position is an accepted location ping. RecordedAt is the server receipt
// time, not a client clock.
type Position struct {
	Latitude   float64
	Longitude  float64
	AccuracyM  *float64
	SpeedKmh   *float64
	HeadingDeg *float64
	Sequence   int64
	RecordedAt time.Time
}

// PositionRecord is a position bound to its journey for the durable mirror.
type PositionRecord struct {
	JourneyID string
	Position
}

// TrackerEntry is the cache slot for one active journey: who may write to
// it, the last accepted sequence, and the latest position.
type TrackerEntry struct {
	JourneyID    string
	TrainerID    string
	SessionID    string
	StudentID    string
	LastSequence int64
	Position     *Position
	UpdatedAt    time.Time
}

// SessionInfo is the narrow view of a tutoring session this subsystem needs,
// provided by the marketplace core.
type SessionInfo struct {
	ID           string
	AllocationID string
	TrainerID    string
	StudentID    string
	HomeLat      float64
	HomeLng      float64
}

// SafetyReport is the outcome of a deviation check against a session's
// expected location.
type SafetyReport struct {
	Safe           bool
	DistanceMeters float64
	Alert          string
}

// Event kinds published to the tracking_events exchange.
const (
	EventTrackingStarted = "tracking.started"
	EventTrainerArrived  = "tracking.arrived"
	EventTrackingEnded   = "tracking.ended"
)

// TrackingEvent notifies the marketplace (students, notification service)
// about journey lifecycle transitions. Fire-and-forget.
type TrackingEvent struct {
	Kind      string    `json:"kind"`
	JourneyID string    `json:"journey_id"`
	SessionID string    `json:"session_id"`
	TrainerID string    `json:"trainer_id"`
	StudentID string    `json:"student_id"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// LocationEvent carries one accepted ping to live subscribers.
type LocationEvent struct {
	JourneyID  string    `json:"journey_id"`
	SessionID  string    `json:"session_id"`
	TrainerID  string    `json:"trainer_id"`
	StudentID  string    `json:"student_id"`
	Sequence   int64     `json:"sequence"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	AccuracyM  *float64  `json:"accuracy_m,omitempty"`
	SpeedKmh   *float64  `json:"speed_kmh,omitempty"`
	HeadingDeg *float64  `json:"heading_deg,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}
