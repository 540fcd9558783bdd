package middleware

import (
	"errors"
	"net/http"

	"go-hr-tracker/internal/delivery/http/response"
	"go-hr-tracker/pkg/apperror"
	"go-hr-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code < http.StatusInternalServerError {
			var detail interface{}
			if len(appErr.Fields) > 0 {
				detail = appErr.Fields
			}
			response.Error(c, appErr.Code, appErr.Message, detail)
			return
		}

		// Internal details stay in the server log.
		logger.Log.Error("Internal Server Error",
			"error", err,
			"path", c.FullPath(),
			"request_id", c.GetString(RequestIDKey),
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
