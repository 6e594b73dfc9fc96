package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	// === Public Routes ===
	authGroup := g.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	// === Authenticated Routes ===
	users := g.Group("/users")
	users.Use(authMiddleware)
	{
		users.GET("/me", h.Me)
	}

	// === Admin Routes ===
	admin := g.Group("/users")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.GET("", h.List)
		admin.PATCH("/:id/role", h.ChangeRole)
	}
}
