package models

// Team represents a team entity
type Team struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Admin     bool   `json:"admin,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// Member represents a team membership
type Member struct {
	TeamID    int64 `json:"team_id"`
	UserID    int64 `json:"user_id"`
	Admin     bool  `json:"admin"`
	CreatedAt int64 `json:"created_at"`
}

// TeamMember is a user listed with their membership flags.
type TeamMember struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Admin    bool   `json:"admin"`
}
