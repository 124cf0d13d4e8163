package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rachit-21/chatwave/internal/models"
	"github.com/rachit-21/chatwave/internal/repository"
)

// In-memory repository implementations for exercising the services
// without a database. They honor the same contracts as the Postgres
// stores: nil-on-miss lookups, expiry filters, set semantics, and the
// pair-key identity for one-on-one chats.

type memUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *memUserRepo) Create(_ context.Context, username, email, passwordHash, role string) (*models.User, error) {
	username = strings.ToLower(username)
	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return nil, repository.ErrDuplicate
		}
	}
	u := &models.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	r.users[u.ID] = u
	return copyUser(u), nil
}

func (r *memUserRepo) FindByEmailOrUsername(_ context.Context, email, username string) (*models.User, error) {
	email = strings.ToLower(email)
	username = strings.ToLower(username)
	for _, u := range r.users {
		if (email != "" && u.Email == email) || (username != "" && u.Username == username) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (r *memUserRepo) FindByRefreshToken(_ context.Context, token string) (*models.User, error) {
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) FindByVerificationTokenHash(_ context.Context, hash string) (*models.User, error) {
	for _, u := range r.users {
		if u.EmailVerificationTokenHash != nil && *u.EmailVerificationTokenHash == hash &&
			u.EmailVerificationTokenExpiry != nil && u.EmailVerificationTokenExpiry.After(time.Now()) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) FindByResetTokenHash(_ context.Context, hash string) (*models.User, error) {
	for _, u := range r.users {
		if u.PasswordResetTokenHash != nil && *u.PasswordResetTokenHash == hash &&
			u.PasswordResetTokenExpiry != nil && u.PasswordResetTokenExpiry.After(time.Now()) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *memUserRepo) UpdateRefreshToken(_ context.Context, id uuid.UUID, token *string) error {
	if u, ok := r.users[id]; ok {
		u.RefreshToken = token
	}
	return nil
}

func (r *memUserRepo) SetVerificationToken(_ context.Context, id uuid.UUID, hash string, expiry time.Time) error {
	if u, ok := r.users[id]; ok {
		u.EmailVerificationTokenHash = &hash
		u.EmailVerificationTokenExpiry = &expiry
	}
	return nil
}

func (r *memUserRepo) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.IsEmailVerified = true
		u.EmailVerificationTokenHash = nil
		u.EmailVerificationTokenExpiry = nil
	}
	return nil
}

func (r *memUserRepo) SetResetToken(_ context.Context, id uuid.UUID, hash string, expiry time.Time) error {
	if u, ok := r.users[id]; ok {
		u.PasswordResetTokenHash = &hash
		u.PasswordResetTokenExpiry = &expiry
	}
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	if u, ok := r.users[id]; ok {
		u.PasswordHash = passwordHash
		u.PasswordResetTokenHash = nil
		u.PasswordResetTokenExpiry = nil
		u.RefreshToken = nil
	}
	return nil
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

type memChatRepo struct {
	chats        map[uuid.UUID]*models.Chat
	participants map[uuid.UUID]map[uuid.UUID]struct{}
	pairKeys     map[string]uuid.UUID
}

func newMemChatRepo() *memChatRepo {
	return &memChatRepo{
		chats:        make(map[uuid.UUID]*models.Chat),
		participants: make(map[uuid.UUID]map[uuid.UUID]struct{}),
		pairKeys:     make(map[string]uuid.UUID),
	}
}

func memPairKey(a, b uuid.UUID) string {
	if a.String() < b.String() {
		return a.String() + ":" + b.String()
	}
	return b.String() + ":" + a.String()
}

func (r *memChatRepo) CreateOneOnOne(_ context.Context, name string, a, b uuid.UUID) (*models.Chat, error) {
	key := memPairKey(a, b)
	if id, ok := r.pairKeys[key]; ok {
		return r.chatWithParticipants(id), nil
	}
	c := &models.Chat{
		ID:          uuid.New(),
		Name:        name,
		IsGroupChat: false,
		AdminID:     a,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	r.chats[c.ID] = c
	r.pairKeys[key] = c.ID
	r.participants[c.ID] = map[uuid.UUID]struct{}{a: {}, b: {}}
	return r.chatWithParticipants(c.ID), nil
}

func (r *memChatRepo) FindOneOnOne(_ context.Context, a, b uuid.UUID) (*models.Chat, error) {
	if id, ok := r.pairKeys[memPairKey(a, b)]; ok {
		return r.chatWithParticipants(id), nil
	}
	return nil, nil
}

func (r *memChatRepo) CreateGroup(_ context.Context, name string, adminID uuid.UUID, participants []uuid.UUID) (*models.Chat, error) {
	c := &models.Chat{
		ID:          uuid.New(),
		Name:        name,
		IsGroupChat: true,
		AdminID:     adminID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	r.chats[c.ID] = c
	members := make(map[uuid.UUID]struct{}, len(participants))
	for _, id := range participants {
		members[id] = struct{}{}
	}
	r.participants[c.ID] = members
	return r.chatWithParticipants(c.ID), nil
}

func (r *memChatRepo) GetByID(_ context.Context, chatID uuid.UUID) (*models.Chat, error) {
	if _, ok := r.chats[chatID]; !ok {
		return nil, nil
	}
	return r.chatWithParticipants(chatID), nil
}

func (r *memChatRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Chat, error) {
	out := make([]models.Chat, 0)
	for id, members := range r.participants {
		if _, ok := members[userID]; ok {
			out = append(out, *r.chatWithParticipants(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *memChatRepo) AddParticipant(_ context.Context, chatID, userID uuid.UUID) error {
	if members, ok := r.participants[chatID]; ok {
		members[userID] = struct{}{}
	}
	return nil
}

func (r *memChatRepo) RemoveParticipant(_ context.Context, chatID, userID uuid.UUID) error {
	if members, ok := r.participants[chatID]; ok {
		delete(members, userID)
	}
	return nil
}

func (r *memChatRepo) IsParticipant(_ context.Context, chatID, userID uuid.UUID) (bool, error) {
	members, ok := r.participants[chatID]
	if !ok {
		return false, nil
	}
	_, ok = members[userID]
	return ok, nil
}

func (r *memChatRepo) Rename(_ context.Context, chatID uuid.UUID, name string) (*models.Chat, error) {
	c, ok := r.chats[chatID]
	if !ok {
		return nil, nil
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	return r.chatWithParticipants(chatID), nil
}

func (r *memChatRepo) Delete(_ context.Context, chatID uuid.UUID) error {
	delete(r.chats, chatID)
	delete(r.participants, chatID)
	return nil
}

func (r *memChatRepo) SetLastMessage(_ context.Context, chatID, messageID uuid.UUID) error {
	if c, ok := r.chats[chatID]; ok {
		id := messageID
		c.LastMessage = &id
		c.UpdatedAt = time.Now()
	}
	return nil
}

func (r *memChatRepo) chatWithParticipants(chatID uuid.UUID) *models.Chat {
	c := *r.chats[chatID]
	c.Participants = make([]uuid.UUID, 0, len(r.participants[chatID]))
	for id := range r.participants[chatID] {
		c.Participants = append(c.Participants, id)
	}
	return &c
}

type memMessageRepo struct {
	messages map[uuid.UUID]*models.Message
}

func newMemMessageRepo() *memMessageRepo {
	return &memMessageRepo{messages: make(map[uuid.UUID]*models.Message)}
}

func (r *memMessageRepo) Create(_ context.Context, chatID, senderID uuid.UUID, content string, attachments []models.Attachment) (*models.Message, error) {
	if attachments == nil {
		attachments = []models.Attachment{}
	}
	m := &models.Message{
		ID:          uuid.New(),
		ChatID:      chatID,
		SenderID:    senderID,
		Content:     content,
		Attachments: attachments,
		CreatedAt:   time.Now(),
	}
	r.messages[m.ID] = m
	return m, nil
}

func (r *memMessageRepo) ListByChat(_ context.Context, chatID uuid.UUID, before time.Time, limit int) ([]models.Message, error) {
	out := make([]models.Message, 0)
	for _, m := range r.messages {
		if m.ChatID != chatID {
			continue
		}
		if !before.IsZero() && !m.CreatedAt.Before(before) {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memMessageRepo) GetByID(_ context.Context, messageID uuid.UUID) (*models.Message, error) {
	m, ok := r.messages[messageID]
	if !ok {
		return nil, nil
	}
	c := *m
	return &c, nil
}

func (r *memMessageRepo) Delete(_ context.Context, messageID uuid.UUID) error {
	delete(r.messages, messageID)
	return nil
}
