package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/campuslink/engage-core/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		auth := middleware.Auth(authCfg)

		// Posts
		v1.POST("/posts", auth, handler.CreatePost)
		v1.POST("/posts/:id/like", auth, handler.LikePost)
		v1.POST("/posts/:id/collect", auth, handler.CollectPost)
		v1.POST("/posts/:id/view", handler.ViewPost)

		// Comments
		v1.POST("/comments", auth, handler.CreateComment)
		v1.POST("/comments/:id/like", auth, handler.LikeComment)

		// Follows
		v1.POST("/users/:id/follow", auth, handler.FollowUser)

		// Orders
		v1.POST("/orders", auth, handler.OpenOrder)
		v1.GET("/orders/:id", handler.GetOrder)
		v1.POST("/orders/:id/claim", auth, handler.ClaimOrder)
		v1.POST("/orders/:id/settle", auth, handler.SettleOrder)
		v1.POST("/orders/:id/cancel", auth, handler.CancelOrder)

		// Accounts
		v1.POST("/accounts/ensure", auth, handler.EnsureAccount)
		v1.GET("/accounts/:id/balance", handler.GetBalance)
		v1.POST("/accounts/login-reward", auth, handler.LoginReward)

		// Messages (inbox materialized by the messenger consumer)
		v1.GET("/messages", auth, handler.ListMessages)
		v1.POST("/messages/read", auth, handler.MarkMessagesRead)

		// Operator repair endpoint (requires API key authentication only)
		v1.POST("/internal/reconcile", middleware.APIKeyAuth(authCfg), handler.Reconcile)
	}
}
