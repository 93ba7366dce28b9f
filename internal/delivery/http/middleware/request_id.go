package middleware

import (
	"institution-site-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDKey is the gin context key holding the request id
const RequestIDKey = "RequestID"

const requestIDHeader = "X-Request-ID"

// RequestID tags every request with an id, reusing a well-formed incoming one,
// and makes it available to usecases through the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(reqID); err != nil {
			reqID = uuid.NewString()
		}

		c.Set(RequestIDKey, reqID)
		c.Header(requestIDHeader, reqID)
		c.Request = c.Request.WithContext(security.WithRequestMeta(c.Request.Context(), security.RequestMeta{
			RequestID: reqID,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}))

		c.Next()
	}
}
