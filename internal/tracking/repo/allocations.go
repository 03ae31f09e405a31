package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AllocationRepo struct {
	db *pgxpool.Pool
}

func NewAllocationRepo(db *pgxpool.Pool) *AllocationRepo {
	return &AllocationRepo{db: db}
}

// CurrentTrainer resolves who holds the allocation on the given date. An
// active substitute shadows the primary for the dates it covers; open-ended
// assignments have a NULL effective_to.
func (r *AllocationRepo) CurrentTrainer(ctx context.Context, allocationID string, on time.Time) (string, error) {
	row := r.db.QueryRow(ctx, `
		SELECT trainer_id
		FROM allocation_trainers
		WHERE allocation_id = $1
		  AND effective_from <= $2
		  AND (effective_to IS NULL OR effective_to >= $2)
		ORDER BY CASE role WHEN 'substitute' THEN 0 ELSE 1 END, effective_from DESC
		LIMIT 1
	`, allocationID, on)

	var trainerID string
	err := row.Scan(&trainerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve allocation trainer failed: %w", err)
	}
	return trainerID, nil
}
