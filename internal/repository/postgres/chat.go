package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rachit-21/chatwave/internal/models"
)

const chatColumns = `c.id, c.name, c.is_group_chat, c.admin_id, c.last_message_id,
		c.created_at, c.updated_at`

type ChatStore struct {
	pool *pgxpool.Pool
}

func NewChatStore(pool *pgxpool.Pool) *ChatStore {
	return &ChatStore{pool: pool}
}

// pairKey derives the stable identity of a one-on-one chat from the
// unordered user pair. The UNIQUE index on this column is what guarantees
// two concurrent creations converge on a single row.
func pairKey(a, b uuid.UUID) string {
	if a.String() < b.String() {
		return a.String() + ":" + b.String()
	}
	return b.String() + ":" + a.String()
}

func scanChat(row rowScanner) (*models.Chat, error) {
	var c models.Chat
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.IsGroupChat,
		&c.AdminID,
		&c.LastMessage,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ChatStore) CreateOneOnOne(ctx context.Context, name string, a, b uuid.UUID) (*models.Chat, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	key := pairKey(a, b)

	// ON CONFLICT DO NOTHING + fallback select: the loser of a concurrent
	// creation race picks up the winner's row instead of erroring.
	chat, err := scanChat(tx.QueryRow(ctx,
		`INSERT INTO chats (id, name, is_group_chat, admin_id, pair_key, created_at, updated_at)
		 VALUES (gen_random_uuid(), $1, false, $2, $3, now(), now())
		 ON CONFLICT (pair_key) DO NOTHING
		 RETURNING id, name, is_group_chat, admin_id, last_message_id, created_at, updated_at`,
		name, a, key))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("insert one-on-one chat: %w", err)
		}
		chat, err = scanChat(tx.QueryRow(ctx,
			`SELECT id, name, is_group_chat, admin_id, last_message_id, created_at, updated_at
			 FROM chats WHERE pair_key = $1`, key))
		if err != nil {
			return nil, fmt.Errorf("select one-on-one chat after conflict: %w", err)
		}
	}

	for _, userID := range []uuid.UUID{a, b} {
		if _, err := tx.Exec(ctx,
			`INSERT INTO chat_participants (chat_id, user_id)
			 VALUES ($1, $2)
			 ON CONFLICT (chat_id, user_id) DO NOTHING`,
			chat.ID, userID); err != nil {
			return nil, fmt.Errorf("insert participant: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit one-on-one chat: %w", err)
	}

	chat.Participants = []uuid.UUID{a, b}
	return chat, nil
}

func (s *ChatStore) FindOneOnOne(ctx context.Context, a, b uuid.UUID) (*models.Chat, error) {
	chat, err := scanChat(s.pool.QueryRow(ctx,
		`SELECT id, name, is_group_chat, admin_id, last_message_id, created_at, updated_at
		 FROM chats WHERE pair_key = $1`, pairKey(a, b)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find one-on-one chat: %w", err)
	}
	return s.withParticipants(ctx, chat)
}

func (s *ChatStore) CreateGroup(ctx context.Context, name string, adminID uuid.UUID, participants []uuid.UUID) (*models.Chat, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	chat, err := scanChat(tx.QueryRow(ctx,
		`INSERT INTO chats (id, name, is_group_chat, admin_id, created_at, updated_at)
		 VALUES (gen_random_uuid(), $1, true, $2, now(), now())
		 RETURNING id, name, is_group_chat, admin_id, last_message_id, created_at, updated_at`,
		name, adminID))
	if err != nil {
		return nil, fmt.Errorf("insert group chat: %w", err)
	}

	for _, userID := range participants {
		if _, err := tx.Exec(ctx,
			`INSERT INTO chat_participants (chat_id, user_id)
			 VALUES ($1, $2)
			 ON CONFLICT (chat_id, user_id) DO NOTHING`,
			chat.ID, userID); err != nil {
			return nil, fmt.Errorf("insert participant: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit group chat: %w", err)
	}

	chat.Participants = participants
	return chat, nil
}

func (s *ChatStore) GetByID(ctx context.Context, chatID uuid.UUID) (*models.Chat, error) {
	chat, err := scanChat(s.pool.QueryRow(ctx,
		`SELECT id, name, is_group_chat, admin_id, last_message_id, created_at, updated_at
		 FROM chats WHERE id = $1`, chatID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return s.withParticipants(ctx, chat)
}

func (s *ChatStore) withParticipants(ctx context.Context, chat *models.Chat) (*models.Chat, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT user_id FROM chat_participants WHERE chat_id = $1`, chat.ID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	chat.Participants = make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		chat.Participants = append(chat.Participants, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate participants: %w", err)
	}
	return chat, nil
}

func (s *ChatStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	query := `
		SELECT ` + chatColumns + `, array_agg(p.user_id) AS participants
		FROM chats c
		JOIN chat_participants me ON me.chat_id = c.id AND me.user_id = $1
		JOIN chat_participants p ON p.chat_id = c.id
		GROUP BY c.id
		ORDER BY c.updated_at DESC`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	chats := make([]models.Chat, 0)
	for rows.Next() {
		var c models.Chat
		if err := rows.Scan(
			&c.ID,
			&c.Name,
			&c.IsGroupChat,
			&c.AdminID,
			&c.LastMessage,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.Participants,
		); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chats: %w", err)
	}

	return chats, nil
}

func (s *ChatStore) AddParticipant(ctx context.Context, chatID, userID uuid.UUID) error {
	query := `
		INSERT INTO chat_participants (chat_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (chat_id, user_id) DO NOTHING`

	if _, err := s.pool.Exec(ctx, query, chatID, userID); err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}

func (s *ChatStore) RemoveParticipant(ctx context.Context, chatID, userID uuid.UUID) error {
	query := `
		DELETE FROM chat_participants
		WHERE chat_id = $1 AND user_id = $2`

	if _, err := s.pool.Exec(ctx, query, chatID, userID); err != nil {
		return fmt.Errorf("remove participant: %w", err)
	}
	return nil
}

func (s *ChatStore) IsParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM chat_participants
			WHERE chat_id = $1 AND user_id = $2
		)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, chatID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check participant: %w", err)
	}
	return exists, nil
}

func (s *ChatStore) Rename(ctx context.Context, chatID uuid.UUID, name string) (*models.Chat, error) {
	chat, err := scanChat(s.pool.QueryRow(ctx,
		`UPDATE chats
		 SET name = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING id, name, is_group_chat, admin_id, last_message_id, created_at, updated_at`,
		chatID, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("rename chat: %w", err)
	}
	return s.withParticipants(ctx, chat)
}

func (s *ChatStore) Delete(ctx context.Context, chatID uuid.UUID) error {
	// chat_participants and messages cascade via foreign keys.
	if _, err := s.pool.Exec(ctx, `DELETE FROM chats WHERE id = $1`, chatID); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	return nil
}

func (s *ChatStore) SetLastMessage(ctx context.Context, chatID, messageID uuid.UUID) error {
	query := `
		UPDATE chats
		SET last_message_id = $2, updated_at = now()
		WHERE id = $1`

	if _, err := s.pool.Exec(ctx, query, chatID, messageID); err != nil {
		return fmt.Errorf("set last message: %w", err)
	}
	return nil
}
