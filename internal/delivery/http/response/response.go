package response

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// requestIDKey mirrors middleware.RequestIDKey; response cannot import middleware.
const requestIDKey = "RequestID"

// Response is the JSON envelope of every non-file answer.
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		RequestID: c.GetString(requestIDKey),
	})
}

// Error renders a failure; err carries field errors or other details and may be nil.
func Error(c *gin.Context, code int, message string, err interface{}) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     err,
		RequestID: c.GetString(requestIDKey),
	})
}

// Attachment sends data as a download named filename.
func Attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, data)
}
