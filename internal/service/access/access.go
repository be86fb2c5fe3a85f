// Package access holds the authorization predicates shared by the HTTP
// handlers, the history reads and the realtime subscriptions.
//
// Every predicate fails closed: a missing row or a store error answers false.
package access

import (
	"context"
	"errors"

	"github.com/nikhil/teamchat/internal/apperrors"
	"github.com/nikhil/teamchat/internal/logger"
	"github.com/nikhil/teamchat/internal/models"
)

// Store is the subset of the store the engine reads.
type Store interface {
	GetMember(ctx context.Context, teamID, userID int64) (*models.Member, error)
	PrivateChannelMemberExists(ctx context.Context, channelID, userID int64) (bool, error)
	DirectMessageRelationExists(ctx context.Context, teamID, userID, partnerID int64) (bool, error)
}

// Engine answers authorization questions.
type Engine struct {
	Store Store
	Log   *logger.Logger
}

// NewEngine creates an authorization engine.
func NewEngine(store Store, log *logger.Logger) *Engine {
	return &Engine{Store: store, Log: log}
}

// IsTeamMember reports whether userID has a membership in teamID.
func (e *Engine) IsTeamMember(ctx context.Context, teamID, userID int64) bool {
	_, ok := e.member(ctx, teamID, userID)
	return ok
}

// IsAdmin reports whether userID administers teamID.
func (e *Engine) IsAdmin(ctx context.Context, teamID, userID int64) bool {
	m, ok := e.member(ctx, teamID, userID)
	return ok && m.Admin
}

// CanAddMember reports whether requesterID may add users to teamID.
func (e *Engine) CanAddMember(ctx context.Context, requesterID, teamID int64) bool {
	return e.IsAdmin(ctx, teamID, requesterID)
}

// CanViewChannel is true for public channels and for private channels that
// list userID.
func (e *Engine) CanViewChannel(ctx context.Context, userID int64, ch *models.Channel) bool {
	if ch == nil {
		return false
	}
	if ch.Public {
		return true
	}

	ok, err := e.Store.PrivateChannelMemberExists(ctx, ch.ID, userID)
	if err != nil {
		e.Log.Error("Failed to check private channel membership", "channel_id", ch.ID, "user_id", userID, "error", err)
		return false
	}
	return ok
}

// CanAccessChannel combines team membership with channel visibility. History
// reads, message creation and live subscriptions all go through it.
func (e *Engine) CanAccessChannel(ctx context.Context, userID int64, ch *models.Channel) bool {
	if ch == nil {
		return false
	}
	return e.IsTeamMember(ctx, ch.TeamID, userID) && e.CanViewChannel(ctx, userID, ch)
}

// CanViewThread is true when userID and partnerID are distinct and have
// exchanged at least one direct message in teamID.
func (e *Engine) CanViewThread(ctx context.Context, teamID, userID, partnerID int64) bool {
	if userID == partnerID {
		return false
	}

	ok, err := e.Store.DirectMessageRelationExists(ctx, teamID, userID, partnerID)
	if err != nil {
		e.Log.Error("Failed to check direct message thread", "team_id", teamID, "user_id", userID, "partner_id", partnerID, "error", err)
		return false
	}
	return ok
}

func (e *Engine) member(ctx context.Context, teamID, userID int64) (*models.Member, bool) {
	m, err := e.Store.GetMember(ctx, teamID, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			e.Log.Error("Failed to load team membership", "team_id", teamID, "user_id", userID, "error", err)
		}
		return nil, false
	}
	return m, true
}
