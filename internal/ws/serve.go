package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rachit-21/chatwave/internal/auth"
	"github.com/rachit-21/chatwave/internal/middleware"
	"github.com/rachit-21/chatwave/internal/repository"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Serve authenticates the handshake and upgrades it to a websocket
// connection. Browser websocket clients cannot set headers, so the token
// is also accepted as a query parameter and as the access-token cookie.
func Serve(hub *Hub, tokens *auth.TokenManager, users repository.UserRepository, membership MembershipChecker, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := middleware.ExtractAccessToken(c)
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing authentication token"})
			return
		}

		claims, err := tokens.ParseAccessToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid or expired token"})
			return
		}

		user, err := users.FindByID(c.Request.Context(), claims.UserID)
		if err != nil {
			logger.Error("websocket handshake user lookup failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "internal error"})
			return
		}
		if user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "user not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := newClient(hub, conn, user.ID, user.Username, membership, logger)
		hub.Register(client)

		logger.Info("websocket connected", zap.String("user_id", user.ID.String()))
		go client.writePump()
		client.readPump()
	}
}
