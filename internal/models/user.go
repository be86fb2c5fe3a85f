package models

// User is an identity managed by the auth service.
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	Password  string `json:"-"`
	CreatedAt int64  `json:"created_at"`
}

// UserSummary is the public part of a user, e.g. a direct-message partner.
type UserSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}
