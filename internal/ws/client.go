package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rachit-21/chatwave/internal/metrics"
	"github.com/rachit-21/chatwave/internal/models"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	maxMessageSize = 1 << 20
	sendBufferSize = 256
)

// Gateway event names. Inbound events come from the client; the
// message-received event is the broadcast form of send-message.
const (
	EventJoinChat        = "join-chat"
	EventLeaveChat       = "leave-chat"
	EventTyping          = "typing"
	EventStopTyping      = "stop-typing"
	EventSendMessage     = "send-message"
	EventMessageReceived = "message-received"
	EventError           = "error"
)

// MembershipChecker answers whether a user belongs to a chat. The chat
// service satisfies it; tests substitute a stub.
type MembershipChecker interface {
	IsParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error)
}

type inboundEvent struct {
	Event       string              `json:"event"`
	ChatID      uuid.UUID           `json:"chatId"`
	Content     string              `json:"content"`
	Attachments []models.Attachment `json:"attachments"`
}

type outboundEvent struct {
	Event       string              `json:"event"`
	ChatID      uuid.UUID           `json:"chatId,omitempty"`
	UserID      uuid.UUID           `json:"userId,omitempty"`
	Username    string              `json:"username,omitempty"`
	Content     string              `json:"content,omitempty"`
	Attachments []models.Attachment `json:"attachments,omitempty"`
	SentAt      time.Time           `json:"sentAt,omitempty"`
	Message     string              `json:"message,omitempty"`
}

// Client is one authenticated websocket connection. The send channel is
// only touched through trySend and closeSend; serializing sends and the
// close behind sendMu is what lets the hub evict a client while its own
// read goroutine is still handling an event.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	sendMu     sync.Mutex
	sendClosed bool
	userID     uuid.UUID
	username   string
	membership MembershipChecker
	logger     *zap.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID, username string, membership MembershipChecker, logger *zap.Logger) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufferSize),
		userID:     userID,
		username:   username,
		membership: membership,
		logger:     logger,
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket read failed", zap.Error(err))
			}
			return
		}

		var in inboundEvent
		if err := json.Unmarshal(data, &in); err != nil {
			c.sendError("malformed event")
			continue
		}
		c.handleEvent(in)
	}
}

func (c *Client) handleEvent(in inboundEvent) {
	metrics.WsEventsTotal.WithLabelValues(in.Event).Inc()

	switch in.Event {
	case EventJoinChat:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		ok, err := c.membership.IsParticipant(ctx, in.ChatID, c.userID)
		cancel()
		if err != nil {
			c.logger.Error("membership check failed", zap.Error(err))
			c.sendError("could not join chat")
			return
		}
		// Room access requires chat membership; a valid token alone is
		// not enough to listen in.
		if !ok {
			c.sendError("not a participant of this chat")
			return
		}
		c.hub.Join(in.ChatID, c)

	case EventLeaveChat:
		c.hub.Leave(in.ChatID, c)

	case EventTyping, EventStopTyping:
		if !c.hub.InRoom(in.ChatID, c) {
			return
		}
		c.broadcast(in.ChatID, outboundEvent{
			Event:    in.Event,
			ChatID:   in.ChatID,
			UserID:   c.userID,
			Username: c.username,
		}, c)

	case EventSendMessage:
		if !c.hub.InRoom(in.ChatID, c) {
			c.sendError("join the chat before sending")
			return
		}
		if in.Content == "" && len(in.Attachments) == 0 {
			c.sendError("message needs content or attachments")
			return
		}
		// Fan-out only, and not back to the sender: their own UI already
		// has the message. Durable persistence goes through the REST
		// message endpoint; the gateway is a delivery channel.
		c.broadcast(in.ChatID, outboundEvent{
			Event:       EventMessageReceived,
			ChatID:      in.ChatID,
			UserID:      c.userID,
			Username:    c.username,
			Content:     in.Content,
			Attachments: in.Attachments,
			SentAt:      time.Now().UTC(),
		}, c)

	default:
		c.sendError("unknown event")
	}
}

func (c *Client) broadcast(chatID uuid.UUID, evt outboundEvent, exclude *Client) {
	payload, err := json.Marshal(evt)
	if err != nil {
		c.logger.Error("marshal outbound event", zap.Error(err))
		return
	}
	c.hub.Broadcast(chatID, payload, exclude)
}

// trySend queues a payload without blocking. It reports false when the
// buffer is full or the channel has been closed by an eviction.
func (c *Client) trySend(payload []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.sendClosed {
		return
	}
	c.sendClosed = true
	close(c.send)
}

func (c *Client) sendError(msg string) {
	payload, err := json.Marshal(outboundEvent{Event: EventError, Message: msg})
	if err != nil {
		return
	}
	c.trySend(payload)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
