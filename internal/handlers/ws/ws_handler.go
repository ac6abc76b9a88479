// internal/handlers/ws/ws_handler.go
package ws

import (
	"net/http"

	"attendance-service/internal/pkg/response"
	ws "attendance-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser origins are enforced upstream; the feed itself carries only
	// masked device ids.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub    *ws.Hub
	logger *zap.Logger
}

func NewWSHandler(hub *ws.Hub, logger *zap.Logger) *WSHandler {
	return &WSHandler{hub: hub, logger: logger}
}

// AlertFeed upgrades the connection and streams the session's blocked-proxy
// alerts as they are recorded.
func (h *WSHandler) AlertFeed(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		response.ValidationError(c, "session id is required", nil)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	ws.NewClient(h.hub, conn, sessionID)
}
