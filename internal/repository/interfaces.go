package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rachit-21/chatwave/internal/models"
)

// ErrDuplicate is returned by Create when the storage-level uniqueness
// constraints on email or username reject the row. The orchestrator checks
// first for a clean error message; this is the backstop against races.
var ErrDuplicate = errors.New("duplicate identity")

// All lookup methods return nil, nil when nothing matches. Token-hash
// lookups additionally filter on non-expiry, so an expired token is
// indistinguishable from "not found".

// UserRepository owns identity records and their credential fields.
type UserRepository interface {
	// Create inserts a new user. Email and username are stored
	// case-normalized. Fails with ErrDuplicate if either is taken.
	Create(ctx context.Context, username, email, passwordHash, role string) (*models.User, error)

	FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// FindByRefreshToken matches the exact stored rotation value.
	FindByRefreshToken(ctx context.Context, token string) (*models.User, error)

	FindByVerificationTokenHash(ctx context.Context, hash string) (*models.User, error)
	FindByResetTokenHash(ctx context.Context, hash string) (*models.User, error)

	// UpdateRefreshToken replaces the stored refresh token; nil clears it.
	UpdateRefreshToken(ctx context.Context, id uuid.UUID, token *string) error

	SetVerificationToken(ctx context.Context, id uuid.UUID, hash string, expiry time.Time) error

	// MarkEmailVerified sets the flag and clears the verification token pair.
	MarkEmailVerified(ctx context.Context, id uuid.UUID) error

	SetResetToken(ctx context.Context, id uuid.UUID, hash string, expiry time.Time) error

	// UpdatePassword replaces the password hash and, in the same update,
	// clears the reset token fields and the refresh token. Every password
	// change invalidates all existing sessions.
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// ChatRepository owns chats and their participant sets.
type ChatRepository interface {
	// CreateOneOnOne inserts a two-person chat keyed by the unordered user
	// pair. Concurrent calls for the same pair converge on a single row.
	CreateOneOnOne(ctx context.Context, name string, a, b uuid.UUID) (*models.Chat, error)

	FindOneOnOne(ctx context.Context, a, b uuid.UUID) (*models.Chat, error)

	CreateGroup(ctx context.Context, name string, adminID uuid.UUID, participants []uuid.UUID) (*models.Chat, error)

	GetByID(ctx context.Context, chatID uuid.UUID) (*models.Chat, error)

	// ListByUser returns every chat the user participates in, most
	// recently active first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Chat, error)

	// AddParticipant and RemoveParticipant have set semantics: adding an
	// existing member or removing an absent one is a no-op.
	AddParticipant(ctx context.Context, chatID, userID uuid.UUID) error
	RemoveParticipant(ctx context.Context, chatID, userID uuid.UUID) error

	// IsParticipant is the hot-path membership check for the gateway.
	IsParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error)

	Rename(ctx context.Context, chatID uuid.UUID, name string) (*models.Chat, error)

	Delete(ctx context.Context, chatID uuid.UUID) error

	// SetLastMessage records the display back-reference and bumps the
	// chat's update time so ListByUser sorts by activity.
	SetLastMessage(ctx context.Context, chatID, messageID uuid.UUID) error
}

// MessageRepository persists chat messages.
type MessageRepository interface {
	Create(ctx context.Context, chatID, senderID uuid.UUID, content string, attachments []models.Attachment) (*models.Message, error)

	// ListByChat returns messages newest first. A zero `before` means
	// "from the latest"; otherwise only messages older than it.
	ListByChat(ctx context.Context, chatID uuid.UUID, before time.Time, limit int) ([]models.Message, error)

	GetByID(ctx context.Context, messageID uuid.UUID) (*models.Message, error)
	Delete(ctx context.Context, messageID uuid.UUID) error
}
