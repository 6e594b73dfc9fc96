package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusbook/campus-booking-backend/internal/auth"
	"github.com/campusbook/campus-booking-backend/internal/user"
)

// RequireAdmin ensures the authenticated user is an admin. The role is read
// from the database rather than the token so demotions take effect without
// waiting for the token to expire.
// It MUST be used after auth.AuthRequired middleware.
func RequireAdmin(userService user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.GetUserID(c)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		u, err := userService.GetByID(c.Request.Context(), userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
			return
		}

		if !u.Role.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden: admin access required"})
			return
		}

		c.Next()
	}
}
