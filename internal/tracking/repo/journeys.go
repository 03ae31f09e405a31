package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tutor-track/internal/tracking/domain"
)

const journeyColumns = `id, session_id, trainer_id, student_id, status, started_at, ended_at, end_reason, created_at`

type JourneyRepo struct {
	db *pgxpool.Pool
}

func NewJourneyRepo(db *pgxpool.Pool) *JourneyRepo {
	return &JourneyRepo{db: db}
}

// Create inserts a new active journey. The partial unique index on
// (session_id) WHERE status='active' is the arbiter for concurrent starts;
// losing the race surfaces as ErrDuplicateStart.
func (r *JourneyRepo) Create(ctx context.Context, j *domain.Journey) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO journeys (id, session_id, trainer_id, student_id, status, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, j.ID, j.SessionID, j.TrainerID, j.StudentID, j.Status, j.StartedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrDuplicateStart
		}
		return fmt.Errorf("insert journey failed: %w", err)
	}
	return nil
}

func (r *JourneyRepo) GetByID(ctx context.Context, id string) (*domain.Journey, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+journeyColumns+`
		FROM journeys
		WHERE id = $1
	`, id)

	j, err := scanJourney(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrJourneyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get journey failed: %w", err)
	}
	return j, nil
}

func (r *JourneyRepo) ActiveBySession(ctx context.Context, sessionID string) (*domain.Journey, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+journeyColumns+`
		FROM journeys
		WHERE session_id = $1 AND status = 'active'
	`, sessionID)

	j, err := scanJourney(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active journey failed: %w", err)
	}
	return j, nil
}

func (r *JourneyRepo) LatestBySession(ctx context.Context, sessionID string) (*domain.Journey, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+journeyColumns+`
		FROM journeys
		WHERE session_id = $1
		ORDER BY started_at DESC
		LIMIT 1
	`, sessionID)

	j, err := scanJourney(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest journey failed: %w", err)
	}
	return j, nil
}

// End finalizes an active journey. The status guard in the WHERE clause
// keeps terminal rows immutable: ending twice, or ending a journey another
// instance already swept, reports ErrJourneyNotActive instead of clobbering
// the recorded reason.
func (r *JourneyRepo) End(ctx context.Context, id string, status domain.JourneyStatus, reason domain.EndReason, endedAt time.Time) error {
	cmd, err := r.db.Exec(ctx, `
		UPDATE journeys
		SET status = $2, end_reason = $3, ended_at = $4
		WHERE id = $1 AND status = 'active'
	`, id, status, reason, endedAt)
	if err != nil {
		return fmt.Errorf("end journey failed: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrJourneyNotActive
	}
	return nil
}

func (r *JourneyRepo) ActiveJourneys(ctx context.Context) ([]*domain.Journey, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+journeyColumns+`
		FROM journeys
		WHERE status = 'active'
		ORDER BY started_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list active journeys failed: %w", err)
	}
	defer rows.Close()

	var journeys []*domain.Journey
	for rows.Next() {
		j, err := scanJourney(rows)
		if err != nil {
			return nil, fmt.Errorf("scan active journey failed: %w", err)
		}
		journeys = append(journeys, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list active journeys failed: %w", err)
	}
	return journeys, nil
}

func scanJourney(row pgx.Row) (*domain.Journey, error) {
	var j domain.Journey
	var status string
	var reason *string
	err := row.Scan(&j.ID, &j.SessionID, &j.TrainerID, &j.StudentID, &status,
		&j.StartedAt, &j.EndedAt, &reason, &j.CreatedAt)
	if err != nil {
		return nil, err
	}
	j.Status = domain.JourneyStatus(status)
	if reason != nil {
		r := domain.EndReason(*reason)
		j.EndReason = &r
	}
	return &j, nil
}
