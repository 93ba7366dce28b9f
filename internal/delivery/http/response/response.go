package response

import (
	"institution-site-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

// Response standardizes the API JSON response
type Response struct {
	Success   bool                `json:"success"`
	Message   string              `json:"message"`
	Data      any                 `json:"data,omitempty"`
	Errors    map[string][]string `json:"errors,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

// Success sends a success response
func Success(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: requestID(c),
	})
}

// Error sends an error response carrying only a client-safe message
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		RequestID: requestID(c),
	})
}

// Outcome sends a contact submission outcome; field errors only appear on failures
func Outcome(c *gin.Context, code int, outcome domain.SubmissionOutcome) {
	resp := Response{
		Success:   outcome.Success,
		Message:   outcome.Message,
		RequestID: requestID(c),
	}
	if !outcome.Success {
		resp.Errors = outcome.Errors
	}
	c.JSON(code, resp)
}

func requestID(c *gin.Context) string {
	reqID, _ := c.Get("RequestID")
	idStr, _ := reqID.(string) // Safe type assertion
	return idStr
}
