package api

import (
	"github.com/gin-gonic/gin"

	"github.com/workpulse/surveychat/internal/api/admin"
	"github.com/workpulse/surveychat/internal/api/chat"
	"github.com/workpulse/surveychat/internal/api/middleware"
	"github.com/workpulse/surveychat/internal/service"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	APIKey       string
	AllowOrigins []string
}

// SetupRouter sets up the Gin router
func SetupRouter(
	chatService *service.ChatService,
	processor *service.QueryProcessor,
	adminService *service.AdminService,
	cfg RouterConfig,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Chat + query API (public)
	chatHandler := chat.NewHandler(chatService, processor)
	apiGroup := r.Group("/api")
	chatHandler.RegisterRoutes(apiGroup)

	// Admin API (requires API key)
	adminHandler := admin.NewHandler(adminService)
	adminGroup := r.Group("/api/admin")
	adminGroup.Use(middleware.Auth(cfg.APIKey))
	adminHandler.RegisterRoutes(adminGroup)

	return r
}
