package middleware

import (
	"errors"
	"log/slog"
	"net/http"

	"institution-site-backend/internal/delivery/http/response"
	"institution-site-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

func ErrorHandler(logger *slog.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			if appErr.Err != nil {
				logger.Warn("request failed",
					"status", appErr.Code,
					"path", c.FullPath(),
					"request_id", c.GetString(RequestIDKey),
					"error", appErr.Err,
				)
			}
			response.Error(c, appErr.Code, appErr.Message)
			return
		}

		// SECURITY: Never expose internal error details to clients.
		logger.Error("internal server error",
			"path", c.FullPath(),
			"request_id", c.GetString(RequestIDKey),
			"error", err,
		)
		response.Error(c, http.StatusInternalServerError, "An unexpected error occurred. Please try again later.")
	}
}
