package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the booking endpoints. Everything requires a signed-in
// user; approve and reject additionally require an admin. The availability
// read is public so the catalog can show free slots before login.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	// === Public Routes ===
	g.GET("/resources/:id/availability", h.Availability)

	// === Authenticated Routes ===
	bookings := g.Group("/bookings")
	bookings.Use(authMiddleware)
	{
		bookings.GET("", h.List)
		bookings.POST("", h.Create)
		bookings.GET("/conflicts", h.CheckConflicts)
		bookings.GET("/:id", h.Get)
		bookings.POST("/:id/cancel", h.Cancel)
	}
	g.GET("/calendar", authMiddleware, h.Calendar)

	// === Admin Routes ===
	admin := g.Group("/bookings")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/:id/approve", h.Approve)
		admin.POST("/:id/reject", h.Reject)
	}
}
