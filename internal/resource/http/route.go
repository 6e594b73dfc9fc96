package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the resource catalog endpoints. Reads are public and
// may be wrapped in a response cache; writes require an admin.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware, cacheMiddleware gin.HandlerFunc) {
	group := g.Group("/resources")

	// === Public Routes ===
	if cacheMiddleware != nil {
		group.GET("", cacheMiddleware, h.List)
	} else {
		group.GET("", h.List)
	}
	group.GET("/:id", h.Get)

	// === Admin Routes ===
	admin := group.Group("")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("", h.Create)
		admin.PATCH("/:id", h.Update)
		admin.DELETE("/:id", h.Delete)
	}
}
