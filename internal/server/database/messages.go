package database

import (
	"context"
	"fmt"
)

// InsertMessage appends a board post with a server-generated timestamp.
func (r *Repository) InsertMessage(ctx context.Context, author, title, body string) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO messages (author, message_title, message, timestamp)
		VALUES ($1, $2, $3, NOW())
	`, author, title, body)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// ListMessagesFull returns every message with all columns, newest first.
// This is the member projection.
func (r *Repository) ListMessagesFull(ctx context.Context) ([]*Message, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, author, message_title, message, timestamp
		FROM messages ORDER BY timestamp DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(&m.ID, &m.Author, &m.Title, &m.Body, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ListMessagesRedacted returns the same rows with title and body withheld.
// This is the non-member projection: author and timestamp only.
func (r *Repository) ListMessagesRedacted(ctx context.Context) ([]*Message, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, author, timestamp
		FROM messages ORDER BY timestamp DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(&m.ID, &m.Author, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
