package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// InsertSession persists a new session row.
func (r *Repository) InsertSession(ctx context.Context, sid, username string, expiresAt time.Time) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO sessions (sid, username, expires_at)
		VALUES ($1, $2, $3)
	`, sid, username, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by id. Expired rows are treated as absent;
// the sweeper removes them eventually.
func (r *Repository) GetSession(ctx context.Context, sid string) (*Session, error) {
	s := &Session{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT sid, username, expires_at, created_at
		FROM sessions WHERE sid = $1 AND expires_at > NOW()
	`, sid).Scan(&s.SID, &s.Username, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return s, nil
}

// TouchSession pushes a session's expiry forward. Last writer wins; there is
// no optimistic-concurrency check on the row.
func (r *Repository) TouchSession(ctx context.Context, sid string, expiresAt time.Time) error {
	_, err := r.db.Pool.Exec(ctx,
		"UPDATE sessions SET expires_at = $2 WHERE sid = $1", sid, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}
	return nil
}

// DeleteSession removes a session row (logout).
func (r *Repository) DeleteSession(ctx context.Context, sid string) error {
	tag, err := r.db.Pool.Exec(ctx, "DELETE FROM sessions WHERE sid = $1", sid)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeleteExpiredSessions removes all rows past their expiry and returns how
// many were swept.
func (r *Repository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, "DELETE FROM sessions WHERE expires_at <= NOW()")
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
