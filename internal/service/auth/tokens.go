package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nikhil/teamchat/internal/models"
)

// Token errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// Claims are carried by both access and refresh tokens.
type Claims struct {
	UserID int64  `json:"user_id"`
	Kind   string `json:"kind"`
	jwt.RegisteredClaims
}

// Tokens is an access/refresh token pair.
type Tokens struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// IssueTokens mints a fresh pair for user. The refresh token is signed with the
// refresh secret plus the user's password hash, so changing the password
// invalidates every outstanding refresh token.
func (s *Service) IssueTokens(user *models.User) (Tokens, error) {
	token, err := s.sign(user.ID, kindAccess, s.cfg.AccessTokenTTL, []byte(s.cfg.JWTSecret))
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := s.sign(user.ID, kindRefresh, s.cfg.RefreshTokenTTL, s.refreshKey(user))
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{Token: token, RefreshToken: refresh}, nil
}

// VerifyToken validates an access token and returns its user id.
func (s *Service) VerifyToken(tokenString string) (int64, error) {
	claims, err := s.parse(tokenString, func(*Claims) ([]byte, error) {
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return 0, err
	}
	if claims.Kind != kindAccess {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

// Refresh validates a refresh token against the current password hash of its
// user and returns a new pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (int64, Tokens, error) {
	var user *models.User
	claims, err := s.parse(refreshToken, func(c *Claims) ([]byte, error) {
		if c.Kind != kindRefresh || c.UserID == 0 {
			return nil, ErrInvalidToken
		}
		u, err := s.Store.GetUser(ctx, c.UserID)
		if err != nil {
			return nil, ErrInvalidToken
		}
		user = u
		return s.refreshKey(u), nil
	})
	if err != nil {
		return 0, Tokens{}, err
	}

	tokens, err := s.IssueTokens(user)
	if err != nil {
		return 0, Tokens{}, err
	}
	return claims.UserID, tokens, nil
}

// Authenticate resolves the caller from an access token, falling back to the
// refresh token. Refreshed is set only when new tokens were minted.
func (s *Service) Authenticate(ctx context.Context, token, refreshToken string) (userID int64, refreshed *Tokens, err error) {
	if token != "" {
		userID, err = s.VerifyToken(token)
		if err == nil {
			return userID, nil, nil
		}
	}
	if refreshToken == "" {
		if err == nil {
			err = ErrInvalidToken
		}
		return 0, nil, err
	}

	userID, tokens, err := s.Refresh(ctx, refreshToken)
	if err != nil {
		return 0, nil, err
	}
	s.Log.Debug("Refreshed tokens", "user_id", userID)
	return userID, &tokens, nil
}

func (s *Service) sign(userID int64, kind string, ttl time.Duration, key []byte) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}

func (s *Service) parse(tokenString string, key func(*Claims) ([]byte, error)) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key(claims)
	}, jwt.WithTimeFunc(s.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) refreshKey(user *models.User) []byte {
	return []byte(s.cfg.RefreshSecret + user.Password)
}
