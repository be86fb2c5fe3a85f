package store

import (
	"context"

	"github.com/nikhil/teamchat/internal/models"
)

// InsertTeam creates the team row and sets its id.
func (t *Tx) InsertTeam(ctx context.Context, team *models.Team) error {
	team.CreatedAt = t.now()
	res, err := t.tx.ExecContext(ctx, `INSERT INTO teams (name, created_at) VALUES (?, ?)`, team.Name, team.CreatedAt)
	if err != nil {
		return translate("insert team", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return translate("insert team", err)
	}
	team.ID = id
	return nil
}

// InsertMember adds a membership as part of the transaction.
func (t *Tx) InsertMember(ctx context.Context, m *models.Member) error {
	return insertMember(ctx, t.tx, m, t.now())
}

// InsertMember adds a single membership.
func (s *Store) InsertMember(ctx context.Context, m *models.Member) error {
	return insertMember(ctx, s.db, m, s.now())
}

func insertMember(ctx context.Context, q querier, m *models.Member, now int64) error {
	m.CreatedAt = now
	_, err := q.ExecContext(ctx,
		`INSERT INTO members (team_id, user_id, admin, created_at) VALUES (?, ?, ?, ?)`,
		m.TeamID, m.UserID, m.Admin, m.CreatedAt)
	return translate("insert member", err)
}

// GetTeam loads a team by id.
func (s *Store) GetTeam(ctx context.Context, id int64) (*models.Team, error) {
	var team models.Team
	err := s.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM teams WHERE id = ?`, id).
		Scan(&team.ID, &team.Name, &team.CreatedAt)
	if err != nil {
		return nil, translate("get team", err)
	}
	return &team, nil
}

// GetMember loads the membership of userID in teamID.
func (s *Store) GetMember(ctx context.Context, teamID, userID int64) (*models.Member, error) {
	var m models.Member
	err := s.db.QueryRowContext(ctx,
		`SELECT team_id, user_id, admin, created_at FROM members WHERE team_id = ? AND user_id = ?`,
		teamID, userID).Scan(&m.TeamID, &m.UserID, &m.Admin, &m.CreatedAt)
	if err != nil {
		return nil, translate("get member", err)
	}
	return &m, nil
}

// ListTeamsForUser returns the teams userID belongs to, with the admin flag of
// that membership.
func (s *Store) ListTeamsForUser(ctx context.Context, userID int64) ([]models.Team, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, m.admin, t.created_at
		FROM teams t
		JOIN members m ON m.team_id = t.id
		WHERE m.user_id = ?
		ORDER BY t.id`, userID)
	if err != nil {
		return nil, translate("list teams", err)
	}
	defer rows.Close()

	teams := make([]models.Team, 0)
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.Admin, &team.CreatedAt); err != nil {
			return nil, translate("scan team", err)
		}
		teams = append(teams, team)
	}
	return teams, translate("list teams", rows.Err())
}

// ListTeamMembers returns every member of a team.
func (s *Store) ListTeamMembers(ctx context.Context, teamID int64) ([]models.TeamMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.email, u.username, m.admin
		FROM users u
		JOIN members m ON m.user_id = u.id
		WHERE m.team_id = ?
		ORDER BY u.id`, teamID)
	if err != nil {
		return nil, translate("list team members", err)
	}
	defer rows.Close()

	members := make([]models.TeamMember, 0)
	for rows.Next() {
		var m models.TeamMember
		if err := rows.Scan(&m.ID, &m.Email, &m.Username, &m.Admin); err != nil {
			return nil, translate("scan team member", err)
		}
		members = append(members, m)
	}
	return members, translate("list team members", rows.Err())
}
