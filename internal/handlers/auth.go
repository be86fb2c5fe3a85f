package handlers

import (
	"net/http"

	"github.com/nikhil/teamchat/internal/apperrors"
	"github.com/nikhil/teamchat/internal/models"
	services "github.com/nikhil/teamchat/internal/service/auth"
)

type AuthHandler struct {
	Service *services.Service
}

// NewAuthHandler creates a new instance of AuthHandler
func NewAuthHandler(service *services.Service) *AuthHandler {
	return &AuthHandler{Service: service}
}

// Signup handles the user registration request
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req services.SignupRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}

	res := h.Service.Signup(r.Context(), req)
	respondWithResult(w, http.StatusCreated, res, res.MutationResult)
}

// Login handles the user authentication request
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req services.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}

	res := h.Service.Login(r.Context(), req)
	respondWithResult(w, http.StatusOK, res, res.MutationResult)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh trades a refresh token for a new pair.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, err)
		return
	}

	_, tokens, err := h.Service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondWithError(w, apperrors.Authorization("refreshToken", "Invalid refresh token"))
		return
	}
	respondWithJSON(w, http.StatusOK, models.AuthResult{
		MutationResult: models.Succeeded(),
		Token:          tokens.Token,
		RefreshToken:   tokens.RefreshToken,
	})
}
