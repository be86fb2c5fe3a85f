package team

import (
	"context"

	"github.com/nikhil/teamchat/internal/models"
)

// ListVisibleChannels returns every public channel of the team and the private
// channels listing userID, each exactly once and ordered by id. Users outside
// the team see nothing.
func (ts *TeamService) ListVisibleChannels(ctx context.Context, teamID, userID int64) ([]models.Channel, error) {
	if !ts.Access.IsTeamMember(ctx, teamID, userID) {
		return []models.Channel{}, nil
	}

	channels, err := ts.Store.ListVisibleChannels(ctx, teamID, userID)
	if err != nil {
		ts.Log.WithContext(ctx).Error("Failed to list channels", "team_id", teamID, "user_id", userID, "error", err)
		return nil, err
	}
	return uniqueBy(channels, func(c models.Channel) int64 { return c.ID }), nil
}

// ListDirectMessagePartners returns the distinct users userID has exchanged
// direct messages with in the team.
func (ts *TeamService) ListDirectMessagePartners(ctx context.Context, teamID, userID int64) ([]models.UserSummary, error) {
	if !ts.Access.IsTeamMember(ctx, teamID, userID) {
		return []models.UserSummary{}, nil
	}

	partners, err := ts.Store.ListDirectMessagePartners(ctx, teamID, userID)
	if err != nil {
		ts.Log.WithContext(ctx).Error("Failed to list direct message partners", "team_id", teamID, "user_id", userID, "error", err)
		return nil, err
	}

	partners = uniqueBy(partners, func(u models.UserSummary) int64 { return u.ID })
	out := partners[:0]
	for _, p := range partners {
		if p.ID != userID {
			out = append(out, p)
		}
	}
	return out, nil
}

// uniqueBy keeps the first occurrence of every key.
func uniqueBy[T any](items []T, key func(T) int64) []T {
	seen := make(map[int64]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, item)
	}
	return out
}
