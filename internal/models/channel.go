package models

// DefaultChannelName is the public channel every team starts with.
const DefaultChannelName = "general"

// Channel represents a channel entity
type Channel struct {
	ID        int64  `json:"id"`
	TeamID    int64  `json:"team_id"`
	Name      string `json:"name"`
	Public    bool   `json:"public"`
	CreatedAt int64  `json:"created_at"`
}
