package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/nikhil/teamchat/internal/logger"
	"github.com/nikhil/teamchat/internal/middleware"
	"github.com/nikhil/teamchat/internal/realtime"
)

// WebSocketHandler upgrades subscription connections. Credentials travel in
// the first frame, not in the upgrade request.
type WebSocketHandler struct {
	endpoint *realtime.Endpoint
	upgrader websocket.Upgrader
	log      *logger.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(endpoint *realtime.Endpoint, allowedOrigins []string, log *logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		endpoint: endpoint,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return middleware.OriginAllowed(allowedOrigins, r.Header.Get("Origin"))
			},
		},
		log: log,
	}
}

// HandleWebSocket handles incoming WebSocket connections
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		h.log.WithContext(r.Context()).Warn("Error upgrading connection", "error", err)
		return
	}
	h.endpoint.Serve(r.Context(), conn)
}
