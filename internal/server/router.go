package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rachit-21/chatwave/internal/api"
	"github.com/rachit-21/chatwave/internal/auth"
	"github.com/rachit-21/chatwave/internal/config"
	"github.com/rachit-21/chatwave/internal/metrics"
	"github.com/rachit-21/chatwave/internal/middleware"
	"github.com/rachit-21/chatwave/internal/repository"
	"github.com/rachit-21/chatwave/internal/service"
	"github.com/rachit-21/chatwave/internal/ws"
	"go.uber.org/zap"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker func() error

// Deps carries everything the router wires together. Keeping it a struct
// means adding a dependency does not ripple through call sites.
type Deps struct {
	Config      *config.Config
	Logger      *zap.Logger
	Tokens      *auth.TokenManager
	Users       repository.UserRepository
	AuthService *service.AuthService
	ChatService *service.ChatService
	Hub         *ws.Hub
	RateLimiter middleware.Counter
	DBHealth    HealthChecker
	RedisHealth HealthChecker
}

// NewRouter assembles the gin engine: public auth routes, the
// authenticated API surface, the websocket gateway, and the operational
// endpoints.
func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), metrics.GinMiddleware())

	r.GET("/healthz", healthHandler(d))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	cookieSecure := d.Config.Env == "production"
	accessTTL := time.Duration(d.Config.AccessTokenTTLMinutes) * time.Minute
	refreshTTL := time.Duration(d.Config.RefreshTokenTTLDays) * 24 * time.Hour

	authHandler := api.NewAuthHandler(d.AuthService, cookieSecure, accessTTL, refreshTTL, d.Logger)
	userHandler := api.NewUserHandler(d.AuthService, d.Logger)
	chatHandler := api.NewChatHandler(d.ChatService, d.Logger)

	authed := middleware.AuthMiddleware(d.Tokens)

	v1 := r.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	if d.RateLimiter != nil {
		// Credential endpoints are the brute-force target; everything
		// else rides on short-lived tokens.
		authRoutes.Use(middleware.RateLimit(d.RateLimiter, 20, time.Minute, d.Logger))
	}
	authRoutes.POST("/register", authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh-token", authHandler.RefreshToken)
	authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
	authRoutes.POST("/reset-password/:resetToken", authHandler.ResetPassword)
	authRoutes.GET("/verify-email/:verificationToken", authHandler.VerifyEmail)
	authRoutes.POST("/logout", authed, authHandler.Logout)
	authRoutes.POST("/change-password", authed, authHandler.ChangePassword)

	users := v1.Group("/users", authed)
	users.GET("/me", userHandler.GetMe)

	chats := v1.Group("/chats", authed)
	chats.POST("/one/:receiverId", chatHandler.CreateOrGetOneOnOne)
	chats.POST("/group", chatHandler.CreateGroup)
	chats.GET("", chatHandler.ListChats)
	chats.GET("/:chatId", chatHandler.GetChat)
	chats.PATCH("/group/:chatId/rename", chatHandler.RenameGroup)
	chats.POST("/group/:chatId/add/:participantId", chatHandler.AddParticipant)
	chats.POST("/group/:chatId/remove/:participantId", chatHandler.RemoveParticipant)
	chats.POST("/group/:chatId/leave", chatHandler.LeaveGroup)
	chats.POST("/:chatId/messages", chatHandler.SendMessage)
	chats.GET("/:chatId/messages", chatHandler.ListMessages)

	messages := v1.Group("/messages", authed)
	messages.DELETE("/:messageId", chatHandler.DeleteMessage)

	r.GET("/ws", ws.Serve(d.Hub, d.Tokens, d.Users, d.ChatService, d.Logger))

	return r
}

func healthHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		checks := gin.H{}

		if d.DBHealth != nil {
			if err := d.DBHealth(); err != nil {
				status = http.StatusServiceUnavailable
				checks["database"] = "down"
				d.Logger.Error("database health check failed", zap.Error(err))
			} else {
				checks["database"] = "up"
			}
		}
		if d.RedisHealth != nil {
			if err := d.RedisHealth(); err != nil {
				status = http.StatusServiceUnavailable
				checks["redis"] = "down"
				d.Logger.Error("redis health check failed", zap.Error(err))
			} else {
				checks["redis"] = "up"
			}
		}

		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
	}
}
