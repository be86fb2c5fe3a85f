// Package auth mints and verifies tokens and handles signup and login.
package auth

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/nikhil/teamchat/internal/apperrors"
	"github.com/nikhil/teamchat/internal/config"
	"github.com/nikhil/teamchat/internal/logger"
	"github.com/nikhil/teamchat/internal/models"
	"github.com/nikhil/teamchat/internal/validator"
)

// Store is what the auth service needs from persistence.
type Store interface {
	CreateUser(ctx context.Context, email, username, passwordHash string) (*models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// Service handles registration, login and tokens.
type Service struct {
	Store Store
	Log   *logger.Logger

	cfg  config.AuthConfig
	now  func() time.Time
	cost int
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for token issue and expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBcryptCost overrides the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

// NewAuthService creates a new instance of Service
func NewAuthService(store Store, cfg config.AuthConfig, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		Store: store,
		Log:   log,
		cfg:   cfg,
		now:   time.Now,
		cost:  bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignupRequest is the signup payload.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,alphanum,min=3,max=25"`
	Password string `json:"password" validate:"required,min=5,max=100"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Signup handles user registration
func (s *Service) Signup(ctx context.Context, req SignupRequest) models.AuthResult {
	if err := validator.Validate(req); err != nil {
		return models.AuthResult{MutationResult: models.Failed(err)}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		s.Log.Error("Failed to hash password", "error", err)
		return models.AuthResult{MutationResult: models.Failed(apperrors.Internal(err))}
	}

	user, err := s.Store.CreateUser(ctx, req.Email, req.Username, string(hashed))
	if err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			err = s.conflictField(ctx, req.Email, err)
		} else {
			s.Log.Error("Failed to create user", "error", err)
		}
		return models.AuthResult{MutationResult: models.Failed(err)}
	}

	s.Log.Info("User registered", "user_id", user.ID)
	return s.authenticated(user)
}

// Login authenticates a user
func (s *Service) Login(ctx context.Context, req LoginRequest) models.AuthResult {
	if err := validator.Validate(req); err != nil {
		return models.AuthResult{MutationResult: models.Failed(err)}
	}

	user, err := s.Store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.Log.Error("Failed to load user", "error", err)
		}
		err = apperrors.WithMessage(err, apperrors.KindNotFound, "email", "No user with this email exists")
		return models.AuthResult{MutationResult: models.Failed(err)}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return models.AuthResult{MutationResult: models.Failed(apperrors.Authorization("password", "Wrong password"))}
	}

	return s.authenticated(user)
}

func (s *Service) authenticated(user *models.User) models.AuthResult {
	tokens, err := s.IssueTokens(user)
	if err != nil {
		s.Log.Error("Failed to issue tokens", "user_id", user.ID, "error", err)
		return models.AuthResult{MutationResult: models.Failed(apperrors.Internal(err))}
	}

	return models.AuthResult{
		MutationResult: models.Succeeded(),
		User:           user,
		Token:          tokens.Token,
		RefreshToken:   tokens.RefreshToken,
	}
}

// conflictField works out which unique column a duplicate insert hit.
func (s *Service) conflictField(ctx context.Context, email string, err error) error {
	if _, lookupErr := s.Store.GetUserByEmail(ctx, email); lookupErr == nil {
		return apperrors.WithMessage(err, apperrors.KindConflict, "email", "Email already registered")
	}
	return apperrors.WithMessage(err, apperrors.KindConflict, "username", "Username is already taken")
}
