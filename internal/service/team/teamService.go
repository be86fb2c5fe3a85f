// Package team covers team bootstrap, membership and the per-team channel and
// direct-message listings.
package team

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/nikhil/teamchat/internal/apperrors"
	"github.com/nikhil/teamchat/internal/logger"
	"github.com/nikhil/teamchat/internal/models"
	"github.com/nikhil/teamchat/internal/service/access"
	"github.com/nikhil/teamchat/internal/store"
	"github.com/nikhil/teamchat/internal/validator"
)

// Store is the persistence the team service needs.
type Store interface {
	WithTx(ctx context.Context, fn func(tx *store.Tx) error) error
	GetTeam(ctx context.Context, id int64) (*models.Team, error)
	GetMember(ctx context.Context, teamID, userID int64) (*models.Member, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	InsertMember(ctx context.Context, m *models.Member) error
	ListTeamsForUser(ctx context.Context, userID int64) ([]models.Team, error)
	ListTeamMembers(ctx context.Context, teamID int64) ([]models.TeamMember, error)
	ListVisibleChannels(ctx context.Context, teamID, userID int64) ([]models.Channel, error)
	ListDirectMessagePartners(ctx context.Context, teamID, userID int64) ([]models.UserSummary, error)
}

// TeamService handles team-related operations
type TeamService struct {
	Store  Store
	Access *access.Engine
	Log    *logger.Logger
}

// CreateTeamRequest represents the request body for team creation
type CreateTeamRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// AddMemberRequest represents the request body for adding a team member
type AddMemberRequest struct {
	Email  string `json:"email"`
	TeamID int64  `json:"teamId" validate:"gt=0"`
}

type emailField struct {
	Email string `json:"email" validate:"required,email"`
}

// NewTeamService initializes a new team service
func NewTeamService(store Store, engine *access.Engine, log *logger.Logger) *TeamService {
	return &TeamService{
		Store:  store,
		Access: engine,
		Log:    log,
	}
}

// CreateTeam creates a team, its public "general" channel and the requester's
// admin membership as one unit. Either all three rows exist afterwards or none.
func (ts *TeamService) CreateTeam(ctx context.Context, requesterID int64, req CreateTeamRequest) models.TeamResult {
	log := ts.Log.WithContext(ctx).WithUser(requesterID)

	if err := validator.Validate(req); err != nil {
		return models.TeamResult{MutationResult: models.Failed(err)}
	}

	team := &models.Team{Name: req.Name}
	err := ts.Store.WithTx(ctx, func(tx *store.Tx) error {
		if err := tx.InsertTeam(ctx, team); err != nil {
			return apperrors.WithMessage(err, apperrors.KindConflict, "name", "Team name is already taken")
		}

		general := &models.Channel{TeamID: team.ID, Name: models.DefaultChannelName, Public: true}
		if err := tx.InsertChannel(ctx, general); err != nil {
			return err
		}

		return tx.InsertMember(ctx, &models.Member{TeamID: team.ID, UserID: requesterID, Admin: true})
	})
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindConflict {
			log.Warn("Team name taken", "name", req.Name)
		} else {
			log.Error("Failed to create team", "error", err)
		}
		return models.TeamResult{MutationResult: models.Failed(err)}
	}

	team.Admin = true
	log.Audit("Team created", "team_id", team.ID)
	return models.TeamResult{MutationResult: models.Succeeded(), Team: team}
}

// AddMember adds the user registered under req.Email to the team. Only team
// admins may do so. Every outcome is reported in the result.
func (ts *TeamService) AddMember(ctx context.Context, requesterID int64, req AddMemberRequest) models.MutationResult {
	log := ts.Log.WithContext(ctx).WithUser(requesterID)

	if err := validator.Validate(req); err != nil {
		return models.Failed(err)
	}

	// Look up the requester's membership and the target user concurrently
	var (
		requester *models.Member
		target    *models.User
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := ts.Store.GetMember(gctx, req.TeamID, requesterID)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		requester = m
		return nil
	})
	g.Go(func() error {
		if req.Email == "" {
			return nil
		}
		u, err := ts.Store.GetUserByEmail(gctx, req.Email)
		if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		target = u
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error("Failed to look up team member", "team_id", req.TeamID, "error", err)
		return models.Failed(err)
	}

	if requester == nil {
		log.Warn("Add member attempt by non-member", "team_id", req.TeamID)
		return models.Failed(apperrors.Authorization("teamId", "You are not a member of this team"))
	}
	if !requester.Admin {
		return models.Failed(apperrors.Authorization("email", "You cannot add members to the team"))
	}

	if err := validator.Validate(emailField{Email: req.Email}); err != nil {
		return models.Failed(err)
	}
	if target == nil {
		return models.Failed(apperrors.NotFound("email", "Could not find user with this email", nil))
	}

	err := ts.Store.InsertMember(ctx, &models.Member{TeamID: req.TeamID, UserID: target.ID})
	if err != nil {
		if apperrors.KindOf(err) != apperrors.KindConflict {
			log.Error("Failed to add team member", "team_id", req.TeamID, "error", err)
		}
		return models.Failed(apperrors.WithMessage(err, apperrors.KindConflict, "email", "This user is already a member of the team"))
	}

	log.Audit("Team member added", "team_id", req.TeamID, "member_id", target.ID)
	return models.Succeeded()
}

// GetTeam returns a team the user belongs to.
func (ts *TeamService) GetTeam(ctx context.Context, userID, teamID int64) (*models.Team, error) {
	m, err := ts.Store.GetMember(ctx, teamID, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		// same answer as a missing team, membership is not leaked
		return nil, apperrors.NotFound("teamId", "Team not found", err)
	}

	t, err := ts.Store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, apperrors.WithPath(err, "teamId")
	}
	t.Admin = m.Admin
	return t, nil
}

// ListTeams returns the teams of userID with the admin flag of each membership.
func (ts *TeamService) ListTeams(ctx context.Context, userID int64) ([]models.Team, error) {
	teams, err := ts.Store.ListTeamsForUser(ctx, userID)
	if err != nil {
		ts.Log.WithContext(ctx).Error("Failed to query teams", "user_id", userID, "error", err)
		return nil, err
	}
	return teams, nil
}

// ListTeamMembers returns the members of a team. Non-members get an empty list.
func (ts *TeamService) ListTeamMembers(ctx context.Context, userID, teamID int64) ([]models.TeamMember, error) {
	if !ts.Access.IsTeamMember(ctx, teamID, userID) {
		return []models.TeamMember{}, nil
	}
	return ts.Store.ListTeamMembers(ctx, teamID)
}
