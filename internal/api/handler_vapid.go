package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetVAPIDPublicKey returns the key browsers need to subscribe to room alerts.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "room alerts are not configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
