package handlers

import (
	"net/http"

	"github.com/nikhil/teamchat/internal/service/team"
)

type TeamHandler struct {
	Service *team.TeamService
}

func NewTeamHandler(service *team.TeamService) *TeamHandler {
	return &TeamHandler{Service: service}
}

func (h *TeamHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req team.CreateTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}

	res := h.Service.CreateTeam(r.Context(), userID, req)
	respondWithResult(w, http.StatusCreated, res, res.MutationResult)
}

// GetUserTeams lists the caller's teams.
func (h *TeamHandler) GetUserTeams(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	teams, err := h.Service.ListTeams(r.Context(), userID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"teams": teams})
}

func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, err)
		return
	}

	t, err := h.Service.GetTeam(r.Context(), userID, teamID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"team": t})
}

func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, err)
		return
	}
	var req team.AddMemberRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}
	req.TeamID = teamID

	res := h.Service.AddMember(r.Context(), userID, req)
	respondWithResult(w, http.StatusOK, res, res)
}

func (h *TeamHandler) GetMembers(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, err)
		return
	}

	members, err := h.Service.ListTeamMembers(r.Context(), userID, teamID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"members": members})
}

// GetChannels lists the channels of a team the caller can see.
func (h *TeamHandler) GetChannels(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, err)
		return
	}

	channels, err := h.Service.ListVisibleChannels(r.Context(), teamID, userID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"channels": channels})
}

func (h *TeamHandler) GetDirectMessagePartners(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, err)
		return
	}

	users, err := h.Service.ListDirectMessagePartners(r.Context(), teamID, userID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"users": users})
}
