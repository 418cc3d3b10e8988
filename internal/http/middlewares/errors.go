package middlewares

import (
	"github.com/gin-gonic/gin"
)

// abortError writes the standard error envelope and stops the chain.
func abortError(c *gin.Context, status int, code, message string) {
	reqID, _ := c.Get(CtxRequestID)
	id, _ := reqID.(string)

	body := gin.H{
		"code":    code,
		"message": message,
	}
	if id != "" {
		body["requestId"] = id
	}

	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
