package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/teamchat/internal/handlers"
)

func (d *Deps) registerTeamRoutes(router *mux.Router) {
	teamHandler := handlers.NewTeamHandler(d.Teams)
	messageHandler := handlers.NewMessageHandler(d.Messages)

	protectedRouter := d.protected(router, "/team")
	protectedRouter.HandleFunc("/create", teamHandler.CreateTeam).Methods(http.MethodPost)
	protectedRouter.HandleFunc("/all", teamHandler.GetUserTeams).Methods(http.MethodGet)
	protectedRouter.HandleFunc("/get/{id:[0-9]+}", teamHandler.GetTeam).Methods(http.MethodGet)
	protectedRouter.HandleFunc("/{id:[0-9]+}/members", teamHandler.GetMembers).Methods(http.MethodGet)
	protectedRouter.HandleFunc("/{id:[0-9]+}/members", teamHandler.AddMember).Methods(http.MethodPost)
	protectedRouter.HandleFunc("/{id:[0-9]+}/channels", teamHandler.GetChannels).Methods(http.MethodGet)
	protectedRouter.HandleFunc("/{id:[0-9]+}/dm/users", teamHandler.GetDirectMessagePartners).Methods(http.MethodGet)
	protectedRouter.HandleFunc("/{id:[0-9]+}/dm/{userId:[0-9]+}", messageHandler.GetDirectMessages).Methods(http.MethodGet)
}

func (d *Deps) registerChannelRoutes(router *mux.Router) {
	channelHandler := handlers.NewChannelHandler(d.Channels)
	messageHandler := handlers.NewMessageHandler(d.Messages)

	protectedRouter := d.protected(router, "/channel")
	protectedRouter.HandleFunc("/create", channelHandler.CreateChannel).Methods(http.MethodPost)
	protectedRouter.HandleFunc("/get/{id:[0-9]+}", channelHandler.GetChannel).Methods(http.MethodGet)
	protectedRouter.HandleFunc("/{id:[0-9]+}/messages", messageHandler.GetMessages).Methods(http.MethodGet)
}

func (d *Deps) registerMessageRoutes(router *mux.Router) {
	messageHandler := handlers.NewMessageHandler(d.Messages)

	protectedRouter := d.protected(router, "/message")
	protectedRouter.HandleFunc("/create", messageHandler.CreateMessage).Methods(http.MethodPost)
	protectedRouter.HandleFunc("/direct", messageHandler.CreateDirectMessage).Methods(http.MethodPost)
}
