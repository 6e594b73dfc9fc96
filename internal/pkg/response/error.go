package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campusbook/campus-booking-backend/internal/pkg/apperror"
)

// ErrorResponse defines the JSON structure for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error sends a JSON error response.
// AppErrors determine their own status code; anything else becomes a 500
// with a generic message so internal details never leak to the client.
func Error(c *gin.Context, err error) {
	code := apperror.StatusCode(err, http.StatusInternalServerError)
	if code == http.StatusInternalServerError {
		c.JSON(code, ErrorResponse{Error: "internal server error"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}
