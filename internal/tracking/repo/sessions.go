package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	gocache "github.com/patrickmn/go-cache"

	"tutor-track/internal/tracking/domain"
)

type SessionRepo struct {
	db *pgxpool.Pool
}

func NewSessionRepo(db *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) Lookup(ctx context.Context, sessionID string) (*domain.SessionInfo, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, allocation_id, trainer_id, student_id, home_latitude, home_longitude
		FROM sessions
		WHERE id = $1
	`, sessionID)

	var s domain.SessionInfo
	err := row.Scan(&s.ID, &s.AllocationID, &s.TrainerID, &s.StudentID, &s.HomeLat, &s.HomeLng)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session failed: %w", err)
	}
	return &s, nil
}

// CachedSessionDirectory fronts a SessionDirectory with a short-TTL cache.
// Session rows are effectively immutable (the home address and participants
// are fixed when the session is booked), so stale reads within the TTL are
// harmless; the consumer hits this on every location event.
type CachedSessionDirectory struct {
	inner domain.SessionDirectory
	cache *gocache.Cache
}

func NewCachedSessionDirectory(inner domain.SessionDirectory) *CachedSessionDirectory {
	return &CachedSessionDirectory{
		inner: inner,
		cache: gocache.New(time.Minute, 5*time.Minute),
	}
}

func (d *CachedSessionDirectory) Lookup(ctx context.Context, sessionID string) (*domain.SessionInfo, error) {
	if v, ok := d.cache.Get(sessionID); ok {
		info := v.(domain.SessionInfo)
		return &info, nil
	}

	info, err := d.inner.Lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	d.cache.Set(sessionID, *info, gocache.DefaultExpiration)

	out := *info
	return &out, nil
}
