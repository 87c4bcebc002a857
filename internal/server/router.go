package server

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jocilejr/whatsbot/internal/auth"
	"github.com/jocilejr/whatsbot/internal/handler"
	"github.com/jocilejr/whatsbot/internal/hub"
	"github.com/jocilejr/whatsbot/internal/metrics"
	"github.com/jocilejr/whatsbot/internal/middleware"
	"github.com/jocilejr/whatsbot/internal/store"
)

type Deps struct {
	Store       *store.Store
	TokenConfig auth.TokenConfig

	// Optional. Defaults: a fresh hub, no metrics route, slog.Default and a
	// limiter of 10 logins per minute per client IP.
	Hub          *hub.Hub
	Metrics      *metrics.Recorder
	Logger       *slog.Logger
	LoginLimiter *middleware.RateLimiter
}

func NewRouter(deps Deps) *gin.Engine {
	if deps.Hub == nil {
		deps.Hub = hub.New()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.LoginLimiter == nil {
		deps.LoginLimiter = middleware.NewRateLimiter(10, time.Minute)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(deps.Logger))

	healthHandler := &handler.HealthHandler{Store: deps.Store}
	r.GET("/health", healthHandler.Check)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := r.Group("/api")

	ownerHandler := &handler.OwnerHandler{Store: deps.Store}
	authHandler := &handler.AuthHandler{Store: deps.Store, TokenConfig: deps.TokenConfig}
	api.POST("/users", ownerHandler.Create)
	api.POST("/auth/login", middleware.RateLimitMiddleware(deps.LoginLimiter), authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.RequireAuth(deps.TokenConfig))
	protected.GET("/users", ownerHandler.List)

	owned := protected.Group("/users/:userId")
	owned.Use(middleware.RequireOwner("userId"))
	owned.GET("", ownerHandler.Get)
	owned.PUT("", ownerHandler.Update)
	owned.DELETE("", ownerHandler.Delete)

	deviceHandler := &handler.DeviceHandler{Store: deps.Store, Hub: deps.Hub}
	owned.POST("/instances", deviceHandler.Create)
	owned.GET("/instances", deviceHandler.List)
	owned.PUT("/instances/:instanceId", deviceHandler.Update)
	owned.POST("/instances/:instanceId/reconnect", deviceHandler.Reconnect)
	owned.POST("/instances/:instanceId/disconnect", deviceHandler.Disconnect)
	owned.DELETE("/instances/:instanceId", deviceHandler.Delete)

	conversationHandler := &handler.ConversationHandler{Store: deps.Store, Hub: deps.Hub}
	owned.GET("/conversations", conversationHandler.List)
	owned.POST("/conversations", conversationHandler.Create)
	owned.GET("/conversations/:conversationId", conversationHandler.Get)
	owned.POST("/conversations/:conversationId/messages", conversationHandler.SendMessage)
	owned.DELETE("/conversations/:conversationId", conversationHandler.Delete)

	campaignHandler := &handler.CampaignHandler{Store: deps.Store, Hub: deps.Hub}
	owned.GET("/campaigns", campaignHandler.List)
	owned.POST("/campaigns", campaignHandler.Create)
	owned.PUT("/campaigns/:campaignId", campaignHandler.Update)
	owned.DELETE("/campaigns/:campaignId", campaignHandler.Delete)

	dashboardHandler := &handler.DashboardHandler{Store: deps.Store}
	owned.GET("/dashboard", dashboardHandler.Get)

	wsHandler := &handler.WebSocketHandler{Hub: deps.Hub, Store: deps.Store, TokenConfig: deps.TokenConfig, Logger: deps.Logger}
	r.GET("/ws", wsHandler.Serve)

	return r
}
