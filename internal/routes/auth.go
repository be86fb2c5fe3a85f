package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nikhil/teamchat/internal/handlers"
	"github.com/nikhil/teamchat/internal/middleware"
)

func (d *Deps) registerAuthRoutes(router *mux.Router) {
	authHandler := handlers.NewAuthHandler(d.Auth)

	// Public routes without auth middleware
	publicRouter := router.PathPrefix("/auth").Subrouter()
	publicRouter.Use(middleware.ResponseWrapperMiddleware)
	publicRouter.HandleFunc("/signup", authHandler.Signup).Methods(http.MethodPost)
	publicRouter.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	publicRouter.HandleFunc("/refresh", authHandler.Refresh).Methods(http.MethodPost)
}

func (d *Deps) registerUserRoutes(router *mux.Router) {
	profileHandler := handlers.NewProfileHandler(d.Profiles)

	protectedRouter := d.protected(router, "/user")
	protectedRouter.HandleFunc("/profile", profileHandler.GetUserProfile).Methods(http.MethodGet)
	protectedRouter.HandleFunc("/profile", profileHandler.UpdateUserProfile).Methods(http.MethodPut)
}
