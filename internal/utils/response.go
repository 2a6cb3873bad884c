package utils

import (
	"github.com/Noviath61/finsight/internal/apperr"
	"github.com/gin-gonic/gin"
)

// SendError writes err as {"error": message, "kind": kind} with its mapped
// status and aborts the chain. Internal details never reach the client.
func SendError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(apperr.Status(err), gin.H{
		"error": apperr.Message(err),
		"kind":  apperr.Kind(err),
	})
}

// SendMessage writes a plain error message with status
func SendMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
