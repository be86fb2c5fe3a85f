package handlers

import (
	"net/http"

	"github.com/nikhil/teamchat/internal/service/users"
)

type ProfileHandler struct {
	Service *users.ProfileService
}

func NewProfileHandler(service *users.ProfileService) *ProfileHandler {
	return &ProfileHandler{Service: service}
}

func (h *ProfileHandler) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	user, err := h.Service.GetProfile(r.Context(), userID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (h *ProfileHandler) UpdateUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req users.UpdateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}

	res := h.Service.UpdateProfile(r.Context(), userID, req)
	respondWithResult(w, http.StatusOK, res, res.MutationResult)
}
