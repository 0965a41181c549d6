package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"interview-coach-backend/internal/delivery/http/response"
	"interview-coach-backend/pkg/apperror"
	"interview-coach-backend/pkg/logger"
)

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("request failed",
					"request_id", c.GetString(RequestIDKey),
					"path", c.FullPath(),
					"status", appErr.Code,
					"error", appErr.Error(),
					"cause", appErr.Err,
				)
			}
			response.Error(c, appErr.Code, appErr.Message, appErr.Details)
			return
		}

		// Internal details stay in the server log
		logger.Log.Error("unhandled error",
			"request_id", c.GetString(RequestIDKey),
			"path", c.FullPath(),
			"error", err.Error(),
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.", nil)
	}
}
