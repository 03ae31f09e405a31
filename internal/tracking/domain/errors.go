package domain

import "errors"

var (
	// ErrNotOwner rejects a journey start/arrival by a trainer who does not
	// currently own the session's training relationship.
	ErrNotOwner = errors.New("trainer does not own this session")

	// ErrAccessDenied rejects an operation on a journey by a caller other
	// than its owner.
	ErrAccessDenied = errors.New("access denied")

	// ErrJourneyNotActive rejects writes to an evicted or terminal journey.
	ErrJourneyNotActive = errors.New("journey is not active")

	// ErrJourneyNotFound means no journey row exists for the given id.
	ErrJourneyNotFound = errors.New("journey not found")

	// ErrSessionNotFound means no session row exists for the given id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrDuplicateStart rejects a start while the same trainer already has
	// an active journey for the session.
	ErrDuplicateStart = errors.New("journey already active for this session")

	// ErrStaleSequence marks a ping whose sequence does not advance the
	// journey's last accepted one. Routine on mobile networks; callers see
	// accepted=false, never a hard failure.
	ErrStaleSequence = errors.New("stale sequence")

	// ErrInvalidCoordinates rejects out-of-range latitude/longitude before
	// the cache is touched.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrInvalidSequence rejects sequences below 1.
	ErrInvalidSequence = errors.New("invalid sequence")

	// ErrTooFarToArrive is the geofence veto: arrival cannot be
	// self-declared without GPS corroboration.
	ErrTooFarToArrive = errors.New("too far from student home to arrive")

	// ErrNoLocationFix rejects MarkArrived before any ping was accepted,
	// since there is no position to corroborate against.
	ErrNoLocationFix = errors.New("no location fix for journey yet")
)
