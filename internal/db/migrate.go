package db

import (
	"context"
	"fmt"
)

// migrations is idempotent DDL, applied in order at startup. The unique
// indexes on users(username), users(email) and chats(pair_key) are the
// storage-level backstops for the uniqueness invariants the service layer
// checks first.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id uuid PRIMARY KEY,
		username text NOT NULL,
		email text NOT NULL,
		password_hash text NOT NULL,
		role text NOT NULL DEFAULT 'user',
		is_email_verified boolean NOT NULL DEFAULT false,
		refresh_token text,
		email_verification_token_hash text,
		email_verification_token_expiry timestamptz,
		password_reset_token_hash text,
		password_reset_token_expiry timestamptz,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users (username)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users (email)`,
	`CREATE INDEX IF NOT EXISTS idx_users_refresh_token ON users (refresh_token)`,

	`CREATE TABLE IF NOT EXISTS chats (
		id uuid PRIMARY KEY,
		name text NOT NULL,
		is_group_chat boolean NOT NULL DEFAULT false,
		admin_id uuid NOT NULL REFERENCES users (id),
		pair_key text,
		last_message_id uuid,
		created_at timestamptz NOT NULL DEFAULT now(),
		updated_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_chats_pair_key ON chats (pair_key) WHERE pair_key IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_chats_updated_at ON chats (updated_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_chats_is_group ON chats (is_group_chat)`,

	`CREATE TABLE IF NOT EXISTS chat_participants (
		chat_id uuid NOT NULL REFERENCES chats (id) ON DELETE CASCADE,
		user_id uuid NOT NULL REFERENCES users (id),
		PRIMARY KEY (chat_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_chat_participants_user ON chat_participants (user_id)`,

	`CREATE TABLE IF NOT EXISTS messages (
		id uuid PRIMARY KEY,
		chat_id uuid NOT NULL REFERENCES chats (id) ON DELETE CASCADE,
		sender_id uuid NOT NULL REFERENCES users (id),
		content text NOT NULL DEFAULT '',
		attachments jsonb NOT NULL DEFAULT '[]',
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages (chat_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages (sender_id)`,
	`CREATE INDEX IF NOT EXISTS idx_messages_created_at ON messages (created_at DESC)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	db.logger.Info("database schema up to date")
	return nil
}
