// Package users serves the signed-in user's own profile.
package users

import (
	"context"
	"strings"

	"github.com/nikhil/teamchat/internal/apperrors"
	"github.com/nikhil/teamchat/internal/logger"
	"github.com/nikhil/teamchat/internal/models"
	"github.com/nikhil/teamchat/internal/validator"
)

// Store is the persistence the profile service needs.
type Store interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	UpdateUsername(ctx context.Context, id int64, username string) error
}

type ProfileService struct {
	Store Store
	Log   *logger.Logger
}

// UpdateProfileRequest is the body of PUT /user/profile.
type UpdateProfileRequest struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=25"`
}

func NewProfileService(store Store, log *logger.Logger) *ProfileService {
	return &ProfileService{
		Store: store,
		Log:   log,
	}
}

// GetProfile returns the user behind the current token.
func (ps *ProfileService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	user, err := ps.Store.GetUser(ctx, userID)
	if err != nil {
		return nil, apperrors.WithMessage(err, apperrors.KindNotFound, "", "User not found")
	}
	return user, nil
}

func (ps *ProfileService) UpdateProfile(ctx context.Context, userID int64, req UpdateProfileRequest) models.UserResult {
	log := ps.Log.WithContext(ctx).WithUser(userID)

	req.Username = strings.TrimSpace(req.Username)
	if err := validator.Validate(req); err != nil {
		return models.UserResult{MutationResult: models.Failed(err)}
	}

	if err := ps.Store.UpdateUsername(ctx, userID, req.Username); err != nil {
		log.Warn("Failed to update username", "error", err)
		return models.UserResult{MutationResult: models.Failed(
			apperrors.WithMessage(err, apperrors.KindConflict, "username", "Username is already taken"))}
	}

	user, err := ps.GetProfile(ctx, userID)
	if err != nil {
		log.Error("Failed to reload profile", "error", err)
		return models.UserResult{MutationResult: models.Failed(err)}
	}

	log.Info("Profile updated")
	return models.UserResult{MutationResult: models.Succeeded(), User: user}
}
