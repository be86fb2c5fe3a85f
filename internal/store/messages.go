package store

import (
	"context"
	"database/sql"

	"github.com/nikhil/teamchat/internal/models"
)

// Position is a keyset position in a newest-first history. Rows strictly
// older than it are returned.
type Position struct {
	CreatedAt int64
	ID        int64
}

// InsertMessage stores a channel message and sets its id and timestamp.
func (s *Store) InsertMessage(ctx context.Context, m *models.Message) error {
	m.CreatedAt = s.now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (channel_id, user_id, text, url, filetype, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ChannelID, m.User.ID, nullString(m.Text), nullString(m.URL), nullString(m.FileType), m.CreatedAt)
	if err != nil {
		return translate("insert message", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return translate("insert message", err)
	}
	m.ID = id
	return nil
}

// ListMessages returns up to limit messages of a channel, newest first,
// starting strictly after before when it is set.
func (s *Store) ListMessages(ctx context.Context, channelID int64, before *Position, limit int) ([]models.Message, error) {
	query := `
		SELECT m.id, m.channel_id, m.text, m.url, m.filetype, m.created_at, u.id, u.username
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.channel_id = ?`
	args := []interface{}{channelID}
	if before != nil {
		query += ` AND (m.created_at < ? OR (m.created_at = ? AND m.id < ?))`
		args = append(args, before.CreatedAt, before.CreatedAt, before.ID)
	}
	query += ` ORDER BY m.created_at DESC, m.id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate("list messages", err)
	}
	defer rows.Close()

	messages := make([]models.Message, 0, limit)
	for rows.Next() {
		var (
			m                   models.Message
			text, url, fileType sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.ChannelID, &text, &url, &fileType, &m.CreatedAt, &m.User.ID, &m.User.Username); err != nil {
			return nil, translate("scan message", err)
		}
		m.Text, m.URL, m.FileType = text.String, url.String, fileType.String
		messages = append(messages, m)
	}
	return messages, translate("list messages", rows.Err())
}

// InsertDirectMessage stores a direct message and sets its id and timestamp.
func (s *Store) InsertDirectMessage(ctx context.Context, dm *models.DirectMessage) error {
	dm.CreatedAt = s.now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO direct_messages (team_id, sender_id, receiver_id, text, created_at) VALUES (?, ?, ?, ?, ?)`,
		dm.TeamID, dm.SenderID, dm.ReceiverID, dm.Text, dm.CreatedAt)
	if err != nil {
		return translate("insert direct message", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return translate("insert direct message", err)
	}
	dm.ID = id
	return nil
}

// ListDirectMessages returns the conversation between userID and partnerID in
// a team, newest first.
func (s *Store) ListDirectMessages(ctx context.Context, teamID, userID, partnerID int64, before *Position, limit int) ([]models.DirectMessage, error) {
	query := `
		SELECT dm.id, dm.team_id, dm.sender_id, dm.receiver_id, dm.text, dm.created_at, u.id, u.username
		FROM direct_messages dm
		JOIN users u ON u.id = dm.sender_id
		WHERE dm.team_id = ?
		  AND ((dm.sender_id = ? AND dm.receiver_id = ?) OR (dm.sender_id = ? AND dm.receiver_id = ?))`
	args := []interface{}{teamID, userID, partnerID, partnerID, userID}
	if before != nil {
		query += ` AND (dm.created_at < ? OR (dm.created_at = ? AND dm.id < ?))`
		args = append(args, before.CreatedAt, before.CreatedAt, before.ID)
	}
	query += ` ORDER BY dm.created_at DESC, dm.id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate("list direct messages", err)
	}
	defer rows.Close()

	messages := make([]models.DirectMessage, 0, limit)
	for rows.Next() {
		var dm models.DirectMessage
		if err := rows.Scan(&dm.ID, &dm.TeamID, &dm.SenderID, &dm.ReceiverID, &dm.Text, &dm.CreatedAt, &dm.Sender.ID, &dm.Sender.Username); err != nil {
			return nil, translate("scan direct message", err)
		}
		messages = append(messages, dm)
	}
	return messages, translate("list direct messages", rows.Err())
}

// ListDirectMessagePartners returns the distinct users userID has exchanged
// direct messages with in a team, never userID itself.
func (s *Store) ListDirectMessagePartners(ctx context.Context, teamID, userID int64) ([]models.UserSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT u.id, u.username
		FROM direct_messages dm
		JOIN users u ON u.id = CASE WHEN dm.sender_id = ? THEN dm.receiver_id ELSE dm.sender_id END
		WHERE dm.team_id = ? AND (dm.sender_id = ? OR dm.receiver_id = ?) AND u.id <> ?
		ORDER BY u.id`, userID, teamID, userID, userID, userID)
	if err != nil {
		return nil, translate("list direct message partners", err)
	}
	defer rows.Close()

	users := make([]models.UserSummary, 0)
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Username); err != nil {
			return nil, translate("scan direct message partner", err)
		}
		users = append(users, u)
	}
	return users, translate("list direct message partners", rows.Err())
}

// DirectMessageRelationExists reports whether userID and partnerID have
// exchanged at least one direct message in a team.
func (s *Store) DirectMessageRelationExists(ctx context.Context, teamID, userID, partnerID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM direct_messages
			WHERE team_id = ?
			  AND ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))
		)`, teamID, userID, partnerID, partnerID, userID).Scan(&exists)
	if err != nil {
		return false, translate("check direct message relation", err)
	}
	return exists, nil
}
