package orderControllers

import (
	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/events"
	"github.com/junaidrashid-git/storefront-api/logger"
	"go.uber.org/zap"
)

// GET /admin/orders/ws streams order events to the admin dashboard
func OrderWebSocketHandler(hub *events.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := hub.Serve(c.Writer, c.Request); err != nil {
			logger.FromGin(c).Warn("websocket upgrade failed", zap.Error(err))
		}
	}
}
