package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/notifications")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.POST("/:id/read", h.MarkRead)
	}

	push := g.Group("/push-subscriptions")
	{
		push.GET("/vapid-key", h.VAPIDKey)
		push.POST("", authMiddleware, h.Subscribe)
	}
}
