package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/teamchat/internal/handlers"
	"github.com/nikhil/teamchat/internal/logger"
	"github.com/nikhil/teamchat/internal/middleware"
	"github.com/nikhil/teamchat/internal/realtime"
	"github.com/nikhil/teamchat/internal/service/auth"
	"github.com/nikhil/teamchat/internal/service/channels"
	"github.com/nikhil/teamchat/internal/service/messages"
	"github.com/nikhil/teamchat/internal/service/team"
	"github.com/nikhil/teamchat/internal/service/users"
)

// Deps are the services the routes are built from.
type Deps struct {
	Auth     *auth.Service
	Teams    *team.TeamService
	Channels *channels.ChannelService
	Messages *messages.MessageService
	Profiles *users.ProfileService
	Health   handlers.Pinger
	Realtime *realtime.Endpoint

	AllowedOrigins []string
	Log            *logger.Logger
}

// protected wraps a subrouter with authentication and JSON responses.
func (d *Deps) protected(router *mux.Router, prefix string) *mux.Router {
	sub := router.PathPrefix(prefix).Subrouter()
	sub.Use(middleware.AuthMiddleware(d.Auth, d.Log.Named("auth")), middleware.ResponseWrapperMiddleware)
	return sub
}

// List of all route registration functions
func routeModules(d *Deps) []func(*mux.Router) {
	return []func(*mux.Router){
		d.registerAuthRoutes,
		d.registerUserRoutes,
		d.registerTeamRoutes,
		d.registerChannelRoutes,
		d.registerMessageRoutes,
		d.registerWebSocketRoutes,
	}
}

// RegisterAllRoutes builds the router with the shared middleware chain.
func RegisterAllRoutes(d *Deps) *mux.Router {
	router := mux.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.Recovery(d.Log),
		middleware.Logging(d.Log),
		middleware.CORS(d.AllowedOrigins),
	)
	// matches every preflight so the router middleware, CORS included, runs on it
	router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	health := handlers.NewHealthHandler(d.Health, d.Log)
	router.HandleFunc("/health", health.Health).Methods(http.MethodGet)

	for _, register := range routeModules(d) {
		register(router)
	}

	return router
}
