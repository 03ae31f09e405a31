// Package cache holds the ownership & sequence cache: one mutable slot per
// active journey, the only store consulted on the location hot path. The
// durable store only ever sees eventually-consistent mirror snapshots.
package cache

import (
	"sync"
	"time"

	"tutor-track/internal/tracking/domain"
)

const shardCount = 32

// Tracker shards journeys across independently locked maps so concurrent
// updates to different journeys never contend. Updates to the same journey
// serialize on the shard lock, which makes the sequence check-and-overwrite
// an atomic compare-and-set.
type Tracker struct {
	shards [shardCount]shard
}

type shard struct {
	mu      sync.Mutex
	entries map[string]*domain.TrackerEntry
}

func NewTracker() *Tracker {
	t := &Tracker{}
	for i := range t.shards {
		t.shards[i].entries = make(map[string]*domain.TrackerEntry)
	}
	return t
}

// fnv32a is FNV-1a; good enough spread for uuid keys without an allocation.
func fnv32a(s string) uint32 {
	h := uint32(2166136261)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

func (t *Tracker) shardFor(journeyID string) *shard {
	return &t.shards[fnv32a(journeyID)%shardCount]
}

// Seed registers a freshly started journey with lastSequence 0. UpdatedAt
// starts ticking immediately so a journey that never pings still ages out.
func (t *Tracker) Seed(journeyID, trainerID, sessionID, studentID string) {
	s := t.shardFor(journeyID)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[journeyID] = &domain.TrackerEntry{
		JourneyID:    journeyID,
		TrainerID:    trainerID,
		SessionID:    sessionID,
		StudentID:    studentID,
		LastSequence: 0,
		UpdatedAt:    time.Now(),
	}
}

// ValidateAndApply accepts a ping only when the journey is active, the
// caller is its seeded trainer, and the sequence strictly advances. Sequence
// regressions and replays return ErrStaleSequence, so the visible position
// can never move backward regardless of delivery order.
func (t *Tracker) ValidateAndApply(journeyID, trainerID string, seq int64, pos domain.Position) (domain.TrackerEntry, error) {
	s := t.shardFor(journeyID)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[journeyID]
	if !ok {
		return domain.TrackerEntry{}, domain.ErrJourneyNotActive
	}
	if e.TrainerID != trainerID {
		return domain.TrackerEntry{}, domain.ErrAccessDenied
	}
	if seq <= e.LastSequence {
		return domain.TrackerEntry{}, domain.ErrStaleSequence
	}

	pos.Sequence = seq
	e.LastSequence = seq
	e.Position = &pos
	e.UpdatedAt = time.Now()

	return copyEntry(e), nil
}

// Get returns a copy of the journey's slot, if it is still active.
func (t *Tracker) Get(journeyID string) (domain.TrackerEntry, bool) {
	s := t.shardFor(journeyID)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[journeyID]
	if !ok {
		return domain.TrackerEntry{}, false
	}
	return copyEntry(e), true
}

// Evict revokes the journey's slot. Every later ValidateAndApply for the id
// fails with ErrJourneyNotActive, including retransmissions already in
// flight when the journey ended.
func (t *Tracker) Evict(journeyID string) {
	s := t.shardFor(journeyID)
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, journeyID)
}

// Snapshot copies every live entry; the idle sweeper walks this.
func (t *Tracker) Snapshot() []domain.TrackerEntry {
	out := make([]domain.TrackerEntry, 0, t.Len())
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		for _, e := range s.entries {
			out = append(out, copyEntry(e))
		}
		s.mu.Unlock()
	}
	return out
}

func (t *Tracker) Len() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

// copyEntry detaches the returned value from the slot so callers can never
// mutate cache state through it.
func copyEntry(e *domain.TrackerEntry) domain.TrackerEntry {
	out := *e
	if e.Position != nil {
		pos := *e.Position
		out.Position = &pos
	}
	return out
}
