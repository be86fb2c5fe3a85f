package handlers

import (
	"net/http"

	"github.com/nikhil/teamchat/internal/service/messages"
)

type MessageHandler struct {
	Service *messages.MessageService
}

func NewMessageHandler(service *messages.MessageService) *MessageHandler {
	return &MessageHandler{Service: service}
}

func (h *MessageHandler) CreateMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req messages.CreateMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}

	res := h.Service.CreateMessage(r.Context(), userID, req)
	respondWithResult(w, http.StatusCreated, res, res.MutationResult)
}

// GetMessages serves channel history: ?cursor=&limit=
func (h *MessageHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	channelID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, err)
		return
	}

	page, err := h.Service.ListMessages(r.Context(), userID, channelID, r.URL.Query().Get("cursor"), queryInt(r, "limit"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}

func (h *MessageHandler) CreateDirectMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req messages.CreateDirectMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}

	res := h.Service.CreateDirectMessage(r.Context(), userID, req)
	respondWithResult(w, http.StatusCreated, res, res.MutationResult)
}

func (h *MessageHandler) GetDirectMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, err)
		return
	}
	partnerID, err := pathID(r, "userId")
	if err != nil {
		respondWithError(w, err)
		return
	}

	page, err := h.Service.ListDirectMessages(r.Context(), userID, teamID, partnerID, r.URL.Query().Get("cursor"), queryInt(r, "limit"))
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, page)
}
