package response

import "github.com/gin-gonic/gin"

const (
	CodeBadRequest          = 40000
	CodeSessionNotFound     = 40401
	CodeInternalServer      = 50000
	CodeUpstreamRejected    = 50201
	CodeUpstreamUnavailable = 50301
)

type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error writes a failure body. Success bodies are the raw contract shapes and
// are written by the handlers directly.
func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIError{
		Code:    code,
		Message: message,
	})
}
