package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/nikhil/teamchat/internal/apperrors"
	"github.com/nikhil/teamchat/internal/logger"
	"github.com/nikhil/teamchat/internal/service/auth"
)

type ContextKey string

const UserContextKey ContextKey = "currentUser"

// Token headers. Refreshed credentials are sent back under the same names.
const (
	TokenHeader        = "x-token"
	RefreshTokenHeader = "x-refresh-token"
)

// Authenticator resolves a caller from an access token and an optional
// refresh token.
type Authenticator interface {
	Authenticate(ctx context.Context, token, refreshToken string) (int64, *auth.Tokens, error)
}

// ContextWithUserID stores the authenticated user id.
func ContextWithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserContextKey, userID)
}

// UserIDFromContext returns the user id set by AuthMiddleware.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(UserContextKey).(int64)
	return id, ok && id > 0
}

func bearerToken(r *http.Request) string {
	if token := r.Header.Get(TokenHeader); token != "" {
		return token
	}
	return strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
}

// AuthMiddleware rejects requests without valid credentials. An expired
// access token is accepted together with a valid refresh token, and the new
// pair is returned in the response headers.
func AuthMiddleware(authenticator Authenticator, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			refreshToken := r.Header.Get(RefreshTokenHeader)
			if token == "" && refreshToken == "" {
				writeUnauthorized(w, "Missing auth token")
				return
			}

			userID, refreshed, err := authenticator.Authenticate(r.Context(), token, refreshToken)
			if err != nil {
				log.WithContext(r.Context()).Debug("Rejected credentials", "path", r.URL.Path, "error", err)
				message := "Invalid token"
				if errors.Is(err, auth.ErrExpiredToken) {
					message = "Token expired"
				}
				writeUnauthorized(w, message)
				return
			}

			if refreshed != nil {
				w.Header().Set(TokenHeader, refreshed.Token)
				w.Header().Set(RefreshTokenHeader, refreshed.RefreshToken)
			}
			next.ServeHTTP(w, r.WithContext(ContextWithUserID(r.Context(), userID)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":     false,
		"errors": []apperrors.FieldError{{Path: "token", Message: message}},
	})
}

func ResponseWrapperMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}
