package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUsernameTaken   = errors.New("username already taken")
	ErrSessionNotFound = errors.New("session not found")
)

// uniqueViolation is the Postgres error code for duplicate-key inserts.
const uniqueViolation = "23505"

// Repository provides parameterized-SQL access to users, messages and sessions.
type Repository struct {
	db *DB
}

// NewRepository creates a new Repository.
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a new account with the default role.
func (r *Repository) CreateUser(ctx context.Context, username, passwordHash string) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO users (username, password, user_type)
		VALUES ($1, $2, 'user')
	`, username, passwordHash)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByUsername retrieves a user by exact username match.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	user := &User{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT username, password, user_type, created_at
		FROM users WHERE username = $1
	`, username).Scan(
		&user.Username,
		&user.PasswordHash,
		&user.UserType,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// PromoteToMember transitions a user's role to member. The transition is
// one-directional; promoting a member again is a harmless no-op row update.
func (r *Repository) PromoteToMember(ctx context.Context, username string) error {
	tag, err := r.db.Pool.Exec(ctx,
		"UPDATE users SET user_type = 'member' WHERE username = $1", username)
	if err != nil {
		return fmt.Errorf("failed to promote user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListUsers returns all accounts ordered by creation time.
func (r *Repository) ListUsers(ctx context.Context) ([]*User, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT username, password, user_type, created_at
		FROM users ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user := &User{}
		if err := rows.Scan(
			&user.Username,
			&user.PasswordHash,
			&user.UserType,
			&user.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// GetStats returns aggregate row counts.
func (r *Repository) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	err := r.db.Pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM users WHERE user_type = 'member'),
			(SELECT COUNT(*) FROM messages),
			(SELECT COUNT(*) FROM sessions WHERE expires_at > NOW())
	`).Scan(
		&stats.TotalUsers,
		&stats.Members,
		&stats.Messages,
		&stats.LiveSessions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return stats, nil
}
