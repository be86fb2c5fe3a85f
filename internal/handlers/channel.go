package handlers

import (
	"net/http"

	"github.com/nikhil/teamchat/internal/service/channels"
)

type ChannelHandler struct {
	Service *channels.ChannelService
}

func NewChannelHandler(service *channels.ChannelService) *ChannelHandler {
	return &ChannelHandler{Service: service}
}

func (h *ChannelHandler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req channels.CreateChannelRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}

	res := h.Service.CreateChannel(r.Context(), userID, req)
	respondWithResult(w, http.StatusCreated, res, res.MutationResult)
}

func (h *ChannelHandler) GetChannel(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	channelID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, err)
		return
	}

	ch, err := h.Service.GetChannel(r.Context(), userID, channelID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"channel": ch})
}
