package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tutor-track/internal/tracking/domain"
)

type LocationRepo struct {
	db *pgxpool.Pool
}

func NewLocationRepo(db *pgxpool.Pool) *LocationRepo {
	return &LocationRepo{db: db}
}

// InsertBatch mirrors a batch of accepted pings in one transaction. The
// mirror worker is the only caller; ordering within a journey is guaranteed
// by the cache having already serialized the pings.
func (r *LocationRepo) InsertBatch(ctx context.Context, records []domain.PositionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin location batch failed: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		_, err = tx.Exec(ctx, `
			INSERT INTO journey_locations
				(journey_id, sequence, latitude, longitude, accuracy_m, speed_kmh, heading_deg, recorded_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, rec.JourneyID, rec.Sequence, rec.Latitude, rec.Longitude,
			rec.AccuracyM, rec.SpeedKmh, rec.HeadingDeg, rec.RecordedAt)
		if err != nil {
			return fmt.Errorf("insert location failed: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// LastForJourney returns the highest-sequence mirrored ping for a journey.
// Used once per journey on startup restore to rebuild the cache watermark.
func (r *LocationRepo) LastForJourney(ctx context.Context, journeyID string) (*domain.PositionRecord, error) {
	row := r.db.QueryRow(ctx, `
		SELECT journey_id, sequence, latitude, longitude, accuracy_m, speed_kmh, heading_deg, recorded_at
		FROM journey_locations
		WHERE journey_id = $1
		ORDER BY sequence DESC
		LIMIT 1
	`, journeyID)

	var rec domain.PositionRecord
	err := row.Scan(&rec.JourneyID, &rec.Sequence, &rec.Latitude, &rec.Longitude,
		&rec.AccuracyM, &rec.SpeedKmh, &rec.HeadingDeg, &rec.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get last location failed: %w", err)
	}
	return &rec, nil
}
