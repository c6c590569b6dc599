package service

import (
	"context"
	"log/slog"
	"strings"

	"clubhouse/internal/server/database"
)

// MessageStore is the message-store surface the board service needs.
type MessageStore interface {
	InsertMessage(ctx context.Context, author, title, body string) error
	ListMessagesFull(ctx context.Context) ([]*database.Message, error)
	ListMessagesRedacted(ctx context.Context) ([]*database.Message, error)
}

// BoardService handles the append-only message board and its two role-keyed
// read projections.
type BoardService struct {
	messages MessageStore
}

// NewBoardService creates a board service.
func NewBoardService(messages MessageStore) *BoardService {
	return &BoardService{messages: messages}
}

// Post appends a message under the author's name with a server-generated
// timestamp.
func (s *BoardService) Post(ctx context.Context, author, title, body string) error {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(body) == "" {
		return ErrMissingField
	}

	if err := s.messages.InsertMessage(ctx, author, title, body); err != nil {
		return err
	}

	slog.Info("message posted", "author", author, "title", title)
	return nil
}

// List returns all messages newest first. Members see full records;
// everyone else gets the redacted projection with title and body withheld.
func (s *BoardService) List(ctx context.Context, viewerRole string) ([]*database.Message, error) {
	if viewerRole == database.RoleMember {
		return s.messages.ListMessagesFull(ctx)
	}
	return s.messages.ListMessagesRedacted(ctx)
}
