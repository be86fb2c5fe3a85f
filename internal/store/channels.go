package store

import (
	"context"

	"github.com/nikhil/teamchat/internal/models"
)

const channelColumns = `c.id, c.team_id, c.name, c.public, c.created_at`

// InsertChannel creates the channel row and sets its id.
func (t *Tx) InsertChannel(ctx context.Context, ch *models.Channel) error {
	ch.CreatedAt = t.now()
	res, err := t.tx.ExecContext(ctx,
		`INSERT INTO channels (team_id, name, public, created_at) VALUES (?, ?, ?, ?)`,
		ch.TeamID, ch.Name, ch.Public, ch.CreatedAt)
	if err != nil {
		return translate("insert channel", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return translate("insert channel", err)
	}
	ch.ID = id
	return nil
}

// InsertPrivateChannelMembers grants userIDs access to a private channel.
func (t *Tx) InsertPrivateChannelMembers(ctx context.Context, channelID int64, userIDs []int64) error {
	for _, userID := range userIDs {
		if _, err := t.tx.ExecContext(ctx,
			`INSERT INTO pcmembers (channel_id, user_id) VALUES (?, ?)`, channelID, userID); err != nil {
			return translate("insert private channel member", err)
		}
	}
	return nil
}

// GetChannel loads a channel by id.
func (s *Store) GetChannel(ctx context.Context, id int64) (*models.Channel, error) {
	var ch models.Channel
	err := s.db.QueryRowContext(ctx, `SELECT `+channelColumns+` FROM channels c WHERE c.id = ?`, id).
		Scan(&ch.ID, &ch.TeamID, &ch.Name, &ch.Public, &ch.CreatedAt)
	if err != nil {
		return nil, translate("get channel", err)
	}
	return &ch, nil
}

// PrivateChannelMemberExists reports whether userID is listed on channelID.
func (s *Store) PrivateChannelMemberExists(ctx context.Context, channelID, userID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM pcmembers WHERE channel_id = ? AND user_id = ?)`,
		channelID, userID).Scan(&exists)
	if err != nil {
		return false, translate("check private channel member", err)
	}
	return exists, nil
}

// PrivateChannelMemberIDs returns the users currently listed on a channel.
func (s *Store) PrivateChannelMemberIDs(ctx context.Context, channelID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM pcmembers WHERE channel_id = ? ORDER BY user_id`, channelID)
	if err != nil {
		return nil, translate("list private channel members", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, translate("scan private channel member", err)
		}
		ids = append(ids, id)
	}
	return ids, translate("list private channel members", rows.Err())
}

// ListVisibleChannels returns the channels of teamID that userID may see: every
// public channel plus the private ones listing the user.
func (s *Store) ListVisibleChannels(ctx context.Context, teamID, userID int64) ([]models.Channel, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT `+channelColumns+`
		FROM channels c
		LEFT JOIN pcmembers pc ON pc.channel_id = c.id AND pc.user_id = ?
		WHERE c.team_id = ? AND (c.public = 1 OR pc.user_id IS NOT NULL)
		ORDER BY c.id`, userID, teamID)
	if err != nil {
		return nil, translate("list channels", err)
	}
	defer rows.Close()

	channels := make([]models.Channel, 0)
	for rows.Next() {
		var ch models.Channel
		if err := rows.Scan(&ch.ID, &ch.TeamID, &ch.Name, &ch.Public, &ch.CreatedAt); err != nil {
			return nil, translate("scan channel", err)
		}
		channels = append(channels, ch)
	}
	return channels, translate("list channels", rows.Err())
}
