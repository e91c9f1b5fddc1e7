package realtime

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hasnaanagy/salik/pkg/common"
	"github.com/hasnaanagy/salik/pkg/logger"
	"github.com/hasnaanagy/salik/pkg/middleware"
	ws "github.com/hasnaanagy/salik/pkg/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are enforced by the CORS layer in front of this handler
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler handles WebSocket connections for the realtime service
type Handler struct {
	hub *ws.Hub
}

// NewHandler creates a new realtime handler
func NewHandler(hub *ws.Hub) *Handler {
	return &Handler{hub: hub}
}

// HandleWebSocket upgrades an authenticated request to a WebSocket connection
// and registers it with the hub
func (h *Handler) HandleWebSocket(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	role, err := middleware.GetUserRole(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("websocket upgrade failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return
	}

	client := ws.NewClient(userID.String(), conn, h.hub, role, logger.Get())
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

// Stats reports connection counts, useful for health dashboards
func (h *Handler) Stats(c *gin.Context) {
	common.SuccessResponse(c, gin.H{
		"connected_clients": h.hub.GetClientCount(),
		"watched_requests":  h.hub.GetRequestCount(),
	})
}

// RegisterRoutes registers realtime routes
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string) {
	api := r.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(jwtSecret))
	{
		api.GET("/ws", h.HandleWebSocket)
		api.GET("/stats", h.Stats)
	}
}
