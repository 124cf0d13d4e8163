package models

import (
	"time"

	"github.com/google/uuid"
)

// User roles. Distinct from chat admin, which is per-chat.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an identity record. Credential and token fields are excluded
// from JSON so a User can be returned to callers without leaking secrets.
type User struct {
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Role            string    `json:"role"`
	IsEmailVerified bool      `json:"is_email_verified"`

	// RefreshToken holds the single currently valid refresh token.
	// A presented refresh token is only honored if it matches this value,
	// which is what makes logout and rotation revoke old tokens.
	RefreshToken *string `json:"-"`

	EmailVerificationTokenHash   *string    `json:"-"`
	EmailVerificationTokenExpiry *time.Time `json:"-"`
	PasswordResetTokenHash       *string    `json:"-"`
	PasswordResetTokenExpiry     *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Chat is a conversation. One-on-one chats have exactly two participants
// and a stable identity per user pair; group chats have an admin who is
// the only participant allowed to mutate membership and name.
type Chat struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	IsGroupChat  bool        `json:"is_group_chat"`
	Participants []uuid.UUID `json:"participants"`
	AdminID      uuid.UUID   `json:"admin_id"`
	LastMessage  *uuid.UUID  `json:"last_message,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Attachment is a file reference carried by a message. Storage of the
// file itself is outside this service.
type Attachment struct {
	URL       string `json:"url"`
	LocalPath string `json:"local_path"`
}

// Message is immutable once created. Content may be empty when
// attachments are present.
type Message struct {
	ID          uuid.UUID    `json:"id"`
	ChatID      uuid.UUID    `json:"chat_id"`
	SenderID    uuid.UUID    `json:"sender_id"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"created_at"`
}
