package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/teamchat/internal/handlers"
)

// registerWebSocketRoutes mounts the subscription endpoint. Authentication
// happens inside the protocol, so no auth middleware here.
func (d *Deps) registerWebSocketRoutes(router *mux.Router) {
	wsHandler := handlers.NewWebSocketHandler(d.Realtime, d.AllowedOrigins, d.Log.Named("websocket"))

	router.HandleFunc("/subscriptions", wsHandler.HandleWebSocket).Methods(http.MethodGet)
	router.HandleFunc("/ws", wsHandler.HandleWebSocket).Methods(http.MethodGet)
}
