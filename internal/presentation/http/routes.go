// Package http assembles the gin engine: routes, middleware and the
// websocket endpoint.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/tercihrehberi/tercihbot-go/internal/application/container"
	"github.com/tercihrehberi/tercihbot-go/internal/presentation/http/handlers"
	"github.com/tercihrehberi/tercihbot-go/internal/presentation/http/middleware"
	"github.com/tercihrehberi/tercihbot-go/internal/presentation/http/websocket"
	"github.com/tercihrehberi/tercihbot-go/pkg/config"
)

// SetupRoutes builds the engine and registers every endpoint. The
// returned hub must be run by the caller for websocket chat to work.
func SetupRoutes(c *container.Container) (*gin.Engine, *websocket.Hub) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	chatHandlers := handlers.NewChatHandlers(c.ChatService, c.Logger)
	catalogHandlers := handlers.NewCatalogHandlers(c.Universities, c.Departments, c.ScoreService, c.Logger)
	authHandlers := handlers.NewAuthHandlers(c.Logger)
	adminHandlers := handlers.NewAdminHandlers(c.ImportService, c.Cache, c.Logger, c.Perf)
	healthHandlers := handlers.NewHealthHandlers(c.DB, c.Cache)

	hub := websocket.NewHub(c.ChatService, c.Logger)

	router.GET("/health", healthHandlers.Health)
	router.GET("/ws/chat", hub.HandleConnection)

	limiter := middleware.NewRateLimiter(config.RateLimitRequests, config.RateLimitWindow)

	api := router.Group("/api/v1")
	api.Use(limiter.Middleware())
	{
		api.POST("/chat", chatHandlers.HandleMessage)
		api.GET("/chat/:sessionId/history", chatHandlers.GetHistory)

		api.GET("/universities", catalogHandlers.ListUniversities)
		api.GET("/departments", catalogHandlers.ListDepartments)
		api.GET("/scores", catalogHandlers.GetScores)

		api.POST("/auth/login", authHandlers.Login)
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminAuth(c.Logger))
	{
		admin.POST("/import", adminHandlers.RunImport)
		admin.GET("/stats", adminHandlers.GetStats)
		admin.PUT("/log-level", adminHandlers.SetLogLevel)
	}

	return router, hub
}
