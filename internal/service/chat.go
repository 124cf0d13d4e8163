package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rachit-21/chatwave/internal/models"
	"github.com/rachit-21/chatwave/internal/repository"
	"go.uber.org/zap"
)

const (
	minGroupNameLength = 3
	minGroupMembers    = 3

	defaultMessageLimit = 50
	maxMessageLimit     = 100
)

// ChatService owns chat lifecycle, participant-set mutation, and the
// admin authorization rules for group chats.
type ChatService struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
	logger   *zap.Logger
}

func NewChatService(chats repository.ChatRepository, messages repository.MessageRepository, logger *zap.Logger) *ChatService {
	return &ChatService{chats: chats, messages: messages, logger: logger}
}

// CreateOrGetOneOnOne is idempotent per unordered user pair: repeated
// calls, in either argument order, resolve to the same chat.
func (s *ChatService) CreateOrGetOneOnOne(ctx context.Context, userID, receiverID uuid.UUID) (*models.Chat, error) {
	if userID == receiverID {
		return nil, ErrSelfChat
	}

	existing, err := s.chats.FindOneOnOne(ctx, userID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("find one-on-one chat: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	chat, err := s.chats.CreateOneOnOne(ctx, "Private Chat", userID, receiverID)
	if err != nil {
		return nil, fmt.Errorf("create one-on-one chat: %w", err)
	}

	s.logger.Info("one-on-one chat created",
		zap.String("chat_id", chat.ID.String()),
		zap.String("user_id", userID.String()),
	)
	return chat, nil
}

// CreateGroup deduplicates the participant list, always includes the
// creator, and requires at least three resulting members. The creator
// becomes the admin.
func (s *ChatService) CreateGroup(ctx context.Context, name string, creatorID uuid.UUID, participantIDs []uuid.UUID) (*models.Chat, error) {
	if len(name) < minGroupNameLength {
		return nil, fmt.Errorf("%w: group name must be at least %d characters", ErrValidation, minGroupNameLength)
	}

	members := []uuid.UUID{creatorID}
	seen := map[uuid.UUID]struct{}{creatorID: {}}
	for _, id := range participantIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}

	if len(members) < minGroupMembers {
		return nil, ErrTooFewMembers
	}

	chat, err := s.chats.CreateGroup(ctx, name, creatorID, members)
	if err != nil {
		return nil, fmt.Errorf("create group chat: %w", err)
	}

	s.logger.Info("group chat created",
		zap.String("chat_id", chat.ID.String()),
		zap.String("admin_id", creatorID.String()),
		zap.Int("members", len(members)),
	)
	return chat, nil
}

// GetUserChats lists the user's chats, most recently active first.
func (s *ChatService) GetUserChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	chats, err := s.chats.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

func (s *ChatService) GetChatDetails(ctx context.Context, chatID uuid.UUID) (*models.Chat, error) {
	chat, err := s.chats.GetByID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	if chat == nil {
		return nil, ErrNotFound
	}
	return chat, nil
}

// AddParticipant is admin-only and has set semantics: adding an existing
// member succeeds without effect.
func (s *ChatService) AddParticipant(ctx context.Context, chatID, requesterID, participantID uuid.UUID) (*models.Chat, error) {
	chat, err := s.GetChatDetails(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsGroupChat {
		return nil, ErrNotGroupChat
	}
	if chat.AdminID != requesterID {
		s.logger.Warn("non-admin tried to add participant",
			zap.String("chat_id", chatID.String()),
			zap.String("requester_id", requesterID.String()),
		)
		return nil, ErrForbidden
	}

	if err := s.chats.AddParticipant(ctx, chatID, participantID); err != nil {
		return nil, fmt.Errorf("add participant: %w", err)
	}
	return s.GetChatDetails(ctx, chatID)
}

// RemoveParticipant is admin-only. The admin cannot be removed by this
// path; there is no admin transfer, so removing them would orphan the
// group.
func (s *ChatService) RemoveParticipant(ctx context.Context, chatID, requesterID, participantID uuid.UUID) (*models.Chat, error) {
	chat, err := s.GetChatDetails(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.AdminID != requesterID {
		s.logger.Warn("non-admin tried to remove participant",
			zap.String("chat_id", chatID.String()),
			zap.String("requester_id", requesterID.String()),
		)
		return nil, ErrForbidden
	}
	if participantID == chat.AdminID {
		return nil, fmt.Errorf("%w: the group admin cannot be removed", ErrValidation)
	}

	if err := s.chats.RemoveParticipant(ctx, chatID, participantID); err != nil {
		return nil, fmt.Errorf("remove participant: %w", err)
	}
	return s.GetChatDetails(ctx, chatID)
}

// LeaveGroup lets any participant leave a group chat. Leaving a
// one-on-one chat is meaningless and rejected. The admin cannot leave
// their own group for the same reason they cannot be removed.
func (s *ChatService) LeaveGroup(ctx context.Context, chatID, userID uuid.UUID) (*models.Chat, error) {
	chat, err := s.GetChatDetails(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsGroupChat {
		return nil, ErrNotGroupChat
	}
	if userID == chat.AdminID {
		return nil, fmt.Errorf("%w: the group admin cannot leave the group", ErrValidation)
	}

	if err := s.chats.RemoveParticipant(ctx, chatID, userID); err != nil {
		return nil, fmt.Errorf("leave group: %w", err)
	}

	s.logger.Info("user left group",
		zap.String("chat_id", chatID.String()),
		zap.String("user_id", userID.String()),
	)
	return s.GetChatDetails(ctx, chatID)
}

// RenameGroup is admin-only.
func (s *ChatService) RenameGroup(ctx context.Context, chatID, requesterID uuid.UUID, newName string) (*models.Chat, error) {
	if len(newName) < minGroupNameLength {
		return nil, fmt.Errorf("%w: group name must be at least %d characters", ErrValidation, minGroupNameLength)
	}

	chat, err := s.GetChatDetails(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if chat.AdminID != requesterID {
		return nil, ErrForbidden
	}

	renamed, err := s.chats.Rename(ctx, chatID, newName)
	if err != nil {
		return nil, fmt.Errorf("rename chat: %w", err)
	}
	if renamed == nil {
		return nil, ErrNotFound
	}
	return renamed, nil
}

// SendMessage persists a message from a participant and updates the
// chat's last-message back-reference so the chat list sorts by activity.
// Empty content is allowed only when attachments are present.
func (s *ChatService) SendMessage(ctx context.Context, chatID, senderID uuid.UUID, content string, attachments []models.Attachment) (*models.Message, error) {
	if content == "" && len(attachments) == 0 {
		return nil, fmt.Errorf("%w: message needs content or attachments", ErrValidation)
	}

	chat, err := s.GetChatDetails(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !contains(chat.Participants, senderID) {
		return nil, ErrForbidden
	}

	msg, err := s.messages.Create(ctx, chatID, senderID, content, attachments)
	if err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	if err := s.chats.SetLastMessage(ctx, chatID, msg.ID); err != nil {
		return nil, fmt.Errorf("set last message: %w", err)
	}

	return msg, nil
}

// GetChatMessages returns a participant's view of a chat's history,
// newest first.
func (s *ChatService) GetChatMessages(ctx context.Context, chatID, requesterID uuid.UUID, before time.Time, limit int) ([]models.Message, error) {
	chat, err := s.GetChatDetails(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !contains(chat.Participants, requesterID) {
		return nil, ErrForbidden
	}

	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}

	messages, err := s.messages.ListByChat(ctx, chatID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// DeleteMessage lets a sender delete their own message.
func (s *ChatService) DeleteMessage(ctx context.Context, messageID, requesterID uuid.UUID) error {
	msg, err := s.messages.GetByID(ctx, messageID)
	if err != nil {
		return fmt.Errorf("get message: %w", err)
	}
	if msg == nil {
		return ErrNotFound
	}
	if msg.SenderID != requesterID {
		return ErrForbidden
	}

	if err := s.messages.Delete(ctx, messageID); err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	return nil
}

// IsParticipant is the membership check the realtime gateway runs before
// granting room access.
func (s *ChatService) IsParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	return s.chats.IsParticipant(ctx, chatID, userID)
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
