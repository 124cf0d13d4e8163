package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rachit-21/chatwave/internal/middleware"
	"github.com/rachit-21/chatwave/internal/models"
	"github.com/rachit-21/chatwave/internal/service"
	"go.uber.org/zap"
)

// ChatHandler exposes chat lifecycle and messaging over HTTP. All routes
// sit behind the auth middleware; the caller's identity always comes
// from the request context, never the body.
type ChatHandler struct {
	chats  *service.ChatService
	logger *zap.Logger
}

func NewChatHandler(chats *service.ChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{chats: chats, logger: logger}
}

type createGroupRequest struct {
	Name         string      `json:"name" binding:"required"`
	Participants []uuid.UUID `json:"participants" binding:"required"`
}

type renameGroupRequest struct {
	Name string `json:"name" binding:"required"`
}

type sendMessageRequest struct {
	Content     string              `json:"content"`
	Attachments []models.Attachment `json:"attachments"`
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// CreateOrGetOneOnOne handles POST /api/v1/chats/one/:receiverId.
// Repeating the call returns the existing chat with a 200 instead of
// creating a duplicate.
func (h *ChatHandler) CreateOrGetOneOnOne(c *gin.Context) {
	receiverID, ok := pathUUID(c, "receiverId")
	if !ok {
		return
	}

	chat, err := h.chats.CreateOrGetOneOnOne(c.Request.Context(), middleware.GetUserID(c), receiverID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, chat, "")
}

// CreateGroup handles POST /api/v1/chats/group.
func (h *ChatHandler) CreateGroup(c *gin.Context) {
	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	chat, err := h.chats.CreateGroup(c.Request.Context(), req.Name, middleware.GetUserID(c), req.Participants)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, chat, "group created")
}

// ListChats handles GET /api/v1/chats.
func (h *ChatHandler) ListChats(c *gin.Context) {
	chats, err := h.chats.GetUserChats(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, chats, "")
}

// GetChat handles GET /api/v1/chats/:chatId. Non-participants get a 403
// rather than a view of the chat.
func (h *ChatHandler) GetChat(c *gin.Context) {
	chatID, ok := pathUUID(c, "chatId")
	if !ok {
		return
	}

	chat, err := h.chats.GetChatDetails(c.Request.Context(), chatID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}

	userID := middleware.GetUserID(c)
	member := false
	for _, p := range chat.Participants {
		if p == userID {
			member = true
			break
		}
	}
	if !member {
		respondError(c, http.StatusForbidden, "you are not a participant of this chat")
		return
	}
	respondOK(c, http.StatusOK, chat, "")
}

// RenameGroup handles PATCH /api/v1/chats/group/:chatId/rename.
func (h *ChatHandler) RenameGroup(c *gin.Context) {
	chatID, ok := pathUUID(c, "chatId")
	if !ok {
		return
	}
	var req renameGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	chat, err := h.chats.RenameGroup(c.Request.Context(), chatID, middleware.GetUserID(c), req.Name)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, chat, "group renamed")
}

// AddParticipant handles POST /api/v1/chats/group/:chatId/add/:participantId.
func (h *ChatHandler) AddParticipant(c *gin.Context) {
	chatID, ok := pathUUID(c, "chatId")
	if !ok {
		return
	}
	participantID, ok := pathUUID(c, "participantId")
	if !ok {
		return
	}

	chat, err := h.chats.AddParticipant(c.Request.Context(), chatID, middleware.GetUserID(c), participantID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, chat, "participant added")
}

// RemoveParticipant handles POST /api/v1/chats/group/:chatId/remove/:participantId.
func (h *ChatHandler) RemoveParticipant(c *gin.Context) {
	chatID, ok := pathUUID(c, "chatId")
	if !ok {
		return
	}
	participantID, ok := pathUUID(c, "participantId")
	if !ok {
		return
	}

	chat, err := h.chats.RemoveParticipant(c.Request.Context(), chatID, middleware.GetUserID(c), participantID)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, chat, "participant removed")
}

// LeaveGroup handles POST /api/v1/chats/group/:chatId/leave.
func (h *ChatHandler) LeaveGroup(c *gin.Context) {
	chatID, ok := pathUUID(c, "chatId")
	if !ok {
		return
	}

	chat, err := h.chats.LeaveGroup(c.Request.Context(), chatID, middleware.GetUserID(c))
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, chat, "left the group")
}

// SendMessage handles POST /api/v1/chats/:chatId/messages.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	chatID, ok := pathUUID(c, "chatId")
	if !ok {
		return
	}
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	msg, err := h.chats.SendMessage(c.Request.Context(), chatID, middleware.GetUserID(c), req.Content, req.Attachments)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, msg, "")
}

// ListMessages handles GET /api/v1/chats/:chatId/messages with optional
// before (RFC 3339) and limit query parameters for cursor pagination.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	chatID, ok := pathUUID(c, "chatId")
	if !ok {
		return
	}

	var before time.Time
	if raw := c.Query("before"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid before timestamp, want RFC 3339")
			return
		}
		before = parsed
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	messages, err := h.chats.GetChatMessages(c.Request.Context(), chatID, middleware.GetUserID(c), before, limit)
	if err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, messages, "")
}

// DeleteMessage handles DELETE /api/v1/messages/:messageId.
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	messageID, ok := pathUUID(c, "messageId")
	if !ok {
		return
	}

	if err := h.chats.DeleteMessage(c.Request.Context(), messageID, middleware.GetUserID(c)); err != nil {
		respondServiceError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, nil, "message deleted")
}
