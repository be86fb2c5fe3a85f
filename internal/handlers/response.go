package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/nikhil/teamchat/internal/apperrors"
	"github.com/nikhil/teamchat/internal/middleware"
	"github.com/nikhil/teamchat/internal/models"
)

const maxBodyBytes = 1 << 20

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondWithError writes the {ok, errors} envelope with the status of err's kind.
func respondWithError(w http.ResponseWriter, err error) {
	respondWithJSON(w, apperrors.HTTPStatus(err), models.Failed(err))
}

// respondWithResult writes a mutation result. Failed results carry the status
// of their error.
func respondWithResult(w http.ResponseWriter, status int, result interface{}, outcome models.MutationResult) {
	if !outcome.OK {
		status = apperrors.HTTPStatus(outcome.Err())
	}
	respondWithJSON(w, status, result)
}

func decodeJSON(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.Validation("", "Invalid request payload")
	}
	return nil
}

// pathID reads a positive integer mux variable.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation(name, "Invalid "+name)
	}
	return id, nil
}

func queryInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

// currentUser returns the id set by the auth middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondWithError(w, apperrors.Authorization("token", "Invalid token"))
	}
	return userID, ok
}
