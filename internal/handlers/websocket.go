package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Mohamedeid710/university-carpooling-app-sub000/internal/services"
)

// WebSocketHandler upgrades the connection and attaches it to the hub.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")
		services.HandleWebSocket(hub, c.Writer, c.Request, userID)
	}
}
