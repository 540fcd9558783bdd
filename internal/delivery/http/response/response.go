package response

import (
	"github.com/gin-gonic/gin"
)

// Response standardizes the API JSON response. The request id travels in the
// X-Request-ID header so repeated reads of the same resource return identical bodies.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error sends an error response. err carries field errors when present.
func Error(c *gin.Context, code int, message string, err interface{}) {
	c.JSON(code, Response{
		Success: false,
		Message: message,
		Error:   err,
	})
}
