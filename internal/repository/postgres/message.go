package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rachit-21/chatwave/internal/models"
)

type MessageStore struct {
	pool *pgxpool.Pool
}

func NewMessageStore(pool *pgxpool.Pool) *MessageStore {
	return &MessageStore{pool: pool}
}

func (s *MessageStore) Create(ctx context.Context, chatID, senderID uuid.UUID, content string, attachments []models.Attachment) (*models.Message, error) {
	if attachments == nil {
		attachments = []models.Attachment{}
	}

	query := `
		INSERT INTO messages (id, chat_id, sender_id, content, attachments, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, now())
		RETURNING id, chat_id, sender_id, content, attachments, created_at`

	var m models.Message
	err := s.pool.QueryRow(ctx, query, chatID, senderID, content, attachments).Scan(
		&m.ID,
		&m.ChatID,
		&m.SenderID,
		&m.Content,
		&m.Attachments,
		&m.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &m, nil
}

func (s *MessageStore) ListByChat(ctx context.Context, chatID uuid.UUID, before time.Time, limit int) ([]models.Message, error) {
	// Cursor pagination on created_at: a zero cursor means "from the
	// latest", otherwise only messages strictly older than the cursor.
	var query string
	var args []any

	if before.IsZero() {
		query = `
			SELECT id, chat_id, sender_id, content, attachments, created_at
			FROM messages
			WHERE chat_id = $1
			ORDER BY created_at DESC
			LIMIT $2`
		args = []any{chatID, limit}
	} else {
		query = `
			SELECT id, chat_id, sender_id, content, attachments, created_at
			FROM messages
			WHERE chat_id = $1 AND created_at < $2
			ORDER BY created_at DESC
			LIMIT $3`
		args = []any{chatID, before, limit}
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID,
			&m.ChatID,
			&m.SenderID,
			&m.Content,
			&m.Attachments,
			&m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

func (s *MessageStore) GetByID(ctx context.Context, messageID uuid.UUID) (*models.Message, error) {
	query := `
		SELECT id, chat_id, sender_id, content, attachments, created_at
		FROM messages
		WHERE id = $1`

	var m models.Message
	err := s.pool.QueryRow(ctx, query, messageID).Scan(
		&m.ID,
		&m.ChatID,
		&m.SenderID,
		&m.Content,
		&m.Attachments,
		&m.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	return &m, nil
}

func (s *MessageStore) Delete(ctx context.Context, messageID uuid.UUID) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM messages WHERE id = $1`, messageID); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}
