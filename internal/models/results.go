package models

import "github.com/nikhil/teamchat/internal/apperrors"

// MutationResult is the uniform outcome of a mutation: failures are reported
// as field errors, never as faults.
type MutationResult struct {
	OK     bool                    `json:"ok"`
	Errors []apperrors.FieldError `json:"errors,omitempty"`

	err error
}

// Succeeded builds an ok result.
func Succeeded() MutationResult {
	return MutationResult{OK: true}
}

// Failed builds a failed result from any error.
func Failed(err error) MutationResult {
	return MutationResult{OK: false, Errors: apperrors.Format(err), err: err}
}

// Err returns the error behind a failed result, used for status mapping and logging.
func (r MutationResult) Err() error {
	return r.err
}

// TeamResult is returned by team creation.
type TeamResult struct {
	MutationResult
	Team *Team `json:"team,omitempty"`
}

// ChannelResult is returned by channel creation.
type ChannelResult struct {
	MutationResult
	Channel *Channel `json:"channel,omitempty"`
}

// MessageResult is returned by message creation.
type MessageResult struct {
	MutationResult
	Message *Message `json:"message,omitempty"`
}

// DirectMessageResult is returned by direct message creation.
type DirectMessageResult struct {
	MutationResult
	Message *DirectMessage `json:"message,omitempty"`
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	MutationResult
	User         *User  `json:"user,omitempty"`
	Token        string `json:"token,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// UserResult is returned by profile updates.
type UserResult struct {
	MutationResult
	User *User `json:"user,omitempty"`
}
