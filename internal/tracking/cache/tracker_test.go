package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"tutor-track/internal/tracking/domain"
)

func pos(lat, lng float64) domain.Position {
	return domain.Position{Latitude: lat, Longitude: lng}
}

func TestValidateAndApplyUnknownJourney(t *testing.T) {
	tr := NewTracker()

	_, err := tr.ValidateAndApply("j1", "t1", 1, pos(43.23, 76.88))
	if !errors.Is(err, domain.ErrJourneyNotActive) {
		t.Fatalf("expected ErrJourneyNotActive, got %v", err)
	}
}

func TestValidateAndApplyWrongTrainer(t *testing.T) {
	tr := NewTracker()
	tr.Seed("j1", "t1", "s1", "u1")

	_, err := tr.ValidateAndApply("j1", "intruder", 1, pos(43.23, 76.88))
	if !errors.Is(err, domain.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	if e, ok := tr.Get("j1"); !ok || e.LastSequence != 0 {
		t.Fatalf("rejected update must not advance state: %+v ok=%v", e, ok)
	}
}

func TestSequenceOrdering(t *testing.T) {
	tr := NewTracker()
	tr.Seed("j1", "t1", "s1", "u1")

	if _, err := tr.ValidateAndApply("j1", "t1", 1, pos(43.0, 76.0)); err != nil {
		t.Fatalf("seq 1: %v", err)
	}
	e, err := tr.ValidateAndApply("j1", "t1", 3, pos(43.3, 76.3))
	if err != nil {
		t.Fatalf("seq 3: %v", err)
	}
	if e.LastSequence != 3 {
		t.Fatalf("lastSequence = %d, want 3", e.LastSequence)
	}

	// Late-arriving 2 must be dropped, visible position stays at 3.
	if _, err := tr.ValidateAndApply("j1", "t1", 2, pos(43.2, 76.2)); !errors.Is(err, domain.ErrStaleSequence) {
		t.Fatalf("seq 2 after 3: expected ErrStaleSequence, got %v", err)
	}
	got, ok := tr.Get("j1")
	if !ok || got.Position == nil {
		t.Fatal("entry lost after stale rejection")
	}
	if got.Position.Latitude != 43.3 || got.LastSequence != 3 {
		t.Fatalf("position moved backward: %+v", got)
	}
}

func TestDuplicateSequenceRejected(t *testing.T) {
	tr := NewTracker()
	tr.Seed("j1", "t1", "s1", "u1")

	if _, err := tr.ValidateAndApply("j1", "t1", 5, pos(43.0, 76.0)); err != nil {
		t.Fatalf("seq 5: %v", err)
	}
	if _, err := tr.ValidateAndApply("j1", "t1", 5, pos(44.0, 77.0)); !errors.Is(err, domain.ErrStaleSequence) {
		t.Fatalf("duplicate seq: expected ErrStaleSequence, got %v", err)
	}
}

func TestEvictRevokesSlot(t *testing.T) {
	tr := NewTracker()
	tr.Seed("j1", "t1", "s1", "u1")
	if _, err := tr.ValidateAndApply("j1", "t1", 1, pos(43.0, 76.0)); err != nil {
		t.Fatalf("seq 1: %v", err)
	}

	tr.Evict("j1")

	if _, ok := tr.Get("j1"); ok {
		t.Fatal("entry survived eviction")
	}
	// A retransmission still in flight when the journey ended.
	if _, err := tr.ValidateAndApply("j1", "t1", 2, pos(43.1, 76.1)); !errors.Is(err, domain.ErrJourneyNotActive) {
		t.Fatalf("post-evict update: expected ErrJourneyNotActive, got %v", err)
	}
	tr.Evict("j1") // idempotent
}

func TestSeedAfterRestoreReplaysAreStale(t *testing.T) {
	tr := NewTracker()
	tr.Seed("j1", "t1", "s1", "u1")

	// Restore path: re-seed then re-apply the last mirrored ping.
	if _, err := tr.ValidateAndApply("j1", "t1", 7, pos(43.0, 76.0)); err != nil {
		t.Fatalf("restore apply: %v", err)
	}
	// The trainer app retransmits everything up to 7; all must be dropped.
	for seq := int64(1); seq <= 7; seq++ {
		if _, err := tr.ValidateAndApply("j1", "t1", seq, pos(50.0, 50.0)); !errors.Is(err, domain.ErrStaleSequence) {
			t.Fatalf("replayed seq %d: expected ErrStaleSequence, got %v", seq, err)
		}
	}
	if _, err := tr.ValidateAndApply("j1", "t1", 8, pos(43.1, 76.1)); err != nil {
		t.Fatalf("seq 8 after restore: %v", err)
	}
}

func TestGetReturnsDetachedCopy(t *testing.T) {
	tr := NewTracker()
	tr.Seed("j1", "t1", "s1", "u1")
	if _, err := tr.ValidateAndApply("j1", "t1", 1, pos(43.0, 76.0)); err != nil {
		t.Fatalf("seq 1: %v", err)
	}

	e, _ := tr.Get("j1")
	e.Position.Latitude = -90
	e.LastSequence = 99

	fresh, _ := tr.Get("j1")
	if fresh.Position.Latitude != 43.0 || fresh.LastSequence != 1 {
		t.Fatalf("caller mutated cache state through Get copy: %+v", fresh)
	}
}

func TestSnapshotAndLen(t *testing.T) {
	tr := NewTracker()
	for i := 0; i < 40; i++ {
		id := fmt.Sprintf("journey-%d", i)
		tr.Seed(id, "t1", "s1", "u1")
	}
	if tr.Len() != 40 {
		t.Fatalf("Len = %d, want 40", tr.Len())
	}
	snap := tr.Snapshot()
	if len(snap) != 40 {
		t.Fatalf("Snapshot len = %d, want 40", len(snap))
	}
	seen := make(map[string]bool, len(snap))
	for _, e := range snap {
		seen[e.JourneyID] = true
	}
	if len(seen) != 40 {
		t.Fatalf("snapshot has duplicate entries: %d unique", len(seen))
	}
}

func TestConcurrentUpdatesLandOnHighestSequence(t *testing.T) {
	tr := NewTracker()
	tr.Seed("j1", "t1", "s1", "u1")

	const n = 200
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 1; i <= n; i++ {
		go func(seq int64) {
			defer wg.Done()
			// Interleaved arrival order; only strictly increasing sequences land.
			tr.ValidateAndApply("j1", "t1", seq, pos(float64(seq)/100, 76.0))
		}(int64(i))
	}
	wg.Wait()

	e, ok := tr.Get("j1")
	if !ok {
		t.Fatal("entry missing after concurrent updates")
	}
	if e.LastSequence != n {
		t.Fatalf("lastSequence = %d, want %d", e.LastSequence, n)
	}
	if e.Position == nil || e.Position.Sequence != n {
		t.Fatalf("visible position is not the highest-sequence ping: %+v", e.Position)
	}
}

func TestConcurrentDistinctJourneys(t *testing.T) {
	tr := NewTracker()
	const journeys = 64
	for i := 0; i < journeys; i++ {
		tr.Seed(fmt.Sprintf("j-%d", i), "t1", "s1", "u1")
	}

	var wg sync.WaitGroup
	for i := 0; i < journeys; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			for seq := int64(1); seq <= 50; seq++ {
				if _, err := tr.ValidateAndApply(id, "t1", seq, pos(43.0, 76.0)); err != nil {
					t.Errorf("%s seq %d: %v", id, seq, err)
					return
				}
			}
		}(fmt.Sprintf("j-%d", i))
	}
	wg.Wait()

	for i := 0; i < journeys; i++ {
		e, ok := tr.Get(fmt.Sprintf("j-%d", i))
		if !ok || e.LastSequence != 50 {
			t.Fatalf("journey %d: ok=%v lastSequence=%d", i, ok, e.LastSequence)
		}
	}
}
