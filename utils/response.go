package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends a structured error response. code is the machine readable error name
// (e.g. "BidTooLow"); extra fields are merged into the body.
func JSONError(c *gin.Context, status int, code, message string, extra gin.H) {
	body := gin.H{
		"status":  status,
		"message": message,
		"error":   code,
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}
