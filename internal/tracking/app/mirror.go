package app

import (
	"context"
	"fmt"
	"time"

	"tutor-track/internal/tracking/domain"
)

const (
	mirrorBatchMax     = 64
	mirrorWriteTimeout = 5 * time.Second
)

// RunMirror drains accepted pings into the durable journey_locations mirror.
// A single worker owns the write side; it batches whatever has queued up, so
// write amplification stays bounded under ping bursts. Failed batches are
// logged and dropped: the mirror is best-effort by contract, live state
// never depends on it.
func (s *TrackingService) RunMirror(ctx context.Context) {
	instance := "TrackingService.RunMirror"
	s.logger.Info(instance, fmt.Sprintf("location mirror started [buffer=%d]", cap(s.mirrorQ)))

	for {
		select {
		case <-ctx.Done():
			s.drainMirror()
			s.logger.Info(instance, "location mirror stopped")
			return
		case rec := <-s.mirrorQ:
			s.writeMirror(s.collectBatch(rec))
		}
	}
}

func (s *TrackingService) collectBatch(first domain.PositionRecord) []domain.PositionRecord {
	batch := make([]domain.PositionRecord, 0, mirrorBatchMax)
	batch = append(batch, first)
	for len(batch) < mirrorBatchMax {
		select {
		case rec := <-s.mirrorQ:
			batch = append(batch, rec)
		default:
			return batch
		}
	}
	return batch
}

// drainMirror flushes whatever is still queued at shutdown.
func (s *TrackingService) drainMirror() {
	for {
		select {
		case rec := <-s.mirrorQ:
			s.writeMirror(s.collectBatch(rec))
		default:
			return
		}
	}
}

// writeMirror runs on its own deadline, detached from the server context, so
// shutdown does not abort an in-flight insert.
func (s *TrackingService) writeMirror(batch []domain.PositionRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), mirrorWriteTimeout)
	defer cancel()

	if err := s.history.InsertBatch(ctx, batch); err != nil {
		s.logger.Error("TrackingService.RunMirror", fmt.Errorf("mirror insert of %d pings failed: %w", len(batch), err))
	}
}
