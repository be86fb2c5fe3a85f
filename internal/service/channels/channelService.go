// Package channels creates channels and resolves single-channel reads.
package channels

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikhil/teamchat/internal/apperrors"
	"github.com/nikhil/teamchat/internal/logger"
	"github.com/nikhil/teamchat/internal/models"
	"github.com/nikhil/teamchat/internal/service/access"
	"github.com/nikhil/teamchat/internal/store"
	"github.com/nikhil/teamchat/internal/validator"
)

// Store is the persistence the channel service needs.
type Store interface {
	WithTx(ctx context.Context, fn func(tx *store.Tx) error) error
	GetChannel(ctx context.Context, id int64) (*models.Channel, error)
}

// ChannelService handles channel-related operations
type ChannelService struct {
	Store  Store
	Access *access.Engine
	Log    *logger.Logger
}

// CreateChannelRequest represents the request body for channel creation
type CreateChannelRequest struct {
	TeamID  int64   `json:"teamId" validate:"gt=0"`
	Name    string  `json:"name" validate:"required,max=100"`
	Public  bool    `json:"public"`
	Members []int64 `json:"members"`
}

// NewChannelService creates a channel service
func NewChannelService(store Store, engine *access.Engine, log *logger.Logger) *ChannelService {
	return &ChannelService{
		Store:  store,
		Access: engine,
		Log:    log,
	}
}

// CreateChannel creates a channel in a team the requester administers. A
// private channel lists the requester and every requested member.
func (cs *ChannelService) CreateChannel(ctx context.Context, requesterID int64, req CreateChannelRequest) models.ChannelResult {
	log := cs.Log.WithContext(ctx).WithUser(requesterID)

	if err := validator.Validate(req); err != nil {
		return models.ChannelResult{MutationResult: models.Failed(err)}
	}

	if !cs.Access.IsAdmin(ctx, req.TeamID, requesterID) {
		log.Warn("Unauthorized channel creation attempt", "team_id", req.TeamID)
		return models.ChannelResult{MutationResult: models.Failed(
			apperrors.Authorization("name", "You have to be the owner of the team to create channels"))}
	}

	members := []int64{requesterID}
	if !req.Public {
		seen := map[int64]bool{requesterID: true}
		for _, id := range req.Members {
			if seen[id] {
				continue
			}
			seen[id] = true
			if !cs.Access.IsTeamMember(ctx, req.TeamID, id) {
				return models.ChannelResult{MutationResult: models.Failed(
					apperrors.Validation("members", fmt.Sprintf("User %d is not a member of this team", id)))}
			}
			members = append(members, id)
		}
	}

	ch := &models.Channel{TeamID: req.TeamID, Name: req.Name, Public: req.Public}
	err := cs.Store.WithTx(ctx, func(tx *store.Tx) error {
		if err := tx.InsertChannel(ctx, ch); err != nil {
			return err
		}
		if ch.Public {
			return nil
		}
		return tx.InsertPrivateChannelMembers(ctx, ch.ID, members)
	})
	if err != nil {
		log.Error("Failed to create channel", "team_id", req.TeamID, "error", err)
		return models.ChannelResult{MutationResult: models.Failed(err)}
	}

	log.Info("Channel created", "channel_id", ch.ID, "team_id", req.TeamID, "public", ch.Public)
	return models.ChannelResult{MutationResult: models.Succeeded(), Channel: ch}
}

// GetChannel returns a channel the user may access. Channels the user cannot
// see are reported exactly like missing ones.
func (cs *ChannelService) GetChannel(ctx context.Context, userID, channelID int64) (*models.Channel, error) {
	ch, err := cs.Store.GetChannel(ctx, channelID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		cs.Log.WithContext(ctx).Error("Failed to load channel", "channel_id", channelID, "error", err)
		return nil, err
	}
	if ch == nil || !cs.Access.CanAccessChannel(ctx, userID, ch) {
		cs.Log.WithContext(ctx).Warn("Channel not found or access denied", "channel_id", channelID, "user_id", userID)
		return nil, apperrors.NotFound("channelId", "Channel not found", err)
	}
	return ch, nil
}
