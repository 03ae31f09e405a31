package domain

import (
	"context"
	"time"
)

// JourneyRepository is the durable journey store.
type JourneyRepository interface {
	Create(ctx context.Context, j *Journey) error
	GetByID(ctx context.Context, id string) (*Journey, error)

	// ActiveBySession returns the session's active journey, or nil when
	// there is none.
	ActiveBySession(ctx context.Context, sessionID string) (*Journey, error)

	// LatestBySession returns the most recently started journey for the
	// session, or nil when the session has never had one.
	LatestBySession(ctx context.Context, sessionID string) (*Journey, error)

	// End moves an active journey to its terminal state. Returns
	// ErrJourneyNotActive when the row is missing or already terminal.
	End(ctx context.Context, id string, status JourneyStatus, reason EndReason, endedAt time.Time) error

	// ActiveJourneys lists every journey still marked active; used by the
	// startup restore and the orphan sweep.
	ActiveJourneys(ctx context.Context) ([]*Journey, error)
}

// LocationHistory is the best-effort durable mirror of accepted pings.
type LocationHistory interface {
	InsertBatch(ctx context.Context, records []PositionRecord) error

	// LastForJourney returns the highest-sequence mirrored ping for a
	// journey, or nil when none was mirrored.
	LastForJourney(ctx context.Context, journeyID string) (*PositionRecord, error)
}

// SessionDirectory resolves sessions through the marketplace core.
type SessionDirectory interface {
	Lookup(ctx context.Context, sessionID string) (*SessionInfo, error)
}

// AllocationDirectory resolves who currently holds a student's training
// relationship (primary or substitute).
type AllocationDirectory interface {
	// CurrentTrainer returns the trainer responsible for the allocation on
	// the given date, or "" when no assignment covers it.
	CurrentTrainer(ctx context.Context, allocationID string, on time.Time) (string, error)
}

// TrackerCache is the ownership & sequence cache: the only store consulted
// on the ping hot path.
type TrackerCache interface {
	Seed(journeyID, trainerID, sessionID, studentID string)

	// ValidateAndApply atomically checks ownership and sequence order, and
	// on success overwrites the journey's slot. Errors: ErrJourneyNotActive,
	// ErrAccessDenied, ErrStaleSequence.
	ValidateAndApply(journeyID, trainerID string, seq int64, pos Position) (TrackerEntry, error)

	Get(journeyID string) (TrackerEntry, bool)
	Evict(journeyID string)
	Snapshot() []TrackerEntry
	Len() int
}

// EventPublisher pushes tracking and location events to the message broker.
// Both calls are fire-and-forget from the caller's perspective: failures are
// logged and never fail the operation that produced the event.
type EventPublisher interface {
	PublishTracking(ctx context.Context, evt TrackingEvent) error
	PublishLocation(ctx context.Context, evt LocationEvent) error
}
