package models

// Message is a channel message.
type Message struct {
	ID        int64       `json:"id"`
	ChannelID int64       `json:"channel_id"`
	Text      string      `json:"text,omitempty"`
	URL       string      `json:"url,omitempty"`
	FileType  string      `json:"filetype,omitempty"`
	User      UserSummary `json:"user"`
	CreatedAt int64       `json:"created_at"`
}

// DirectMessage is a message between two members of a team.
type DirectMessage struct {
	ID         int64       `json:"id"`
	TeamID     int64       `json:"team_id"`
	SenderID   int64       `json:"sender_id"`
	ReceiverID int64       `json:"receiver_id"`
	Text       string      `json:"text"`
	Sender     UserSummary `json:"sender"`
	CreatedAt  int64       `json:"created_at"`
}

// MessagePage is one page of history, newest first.
type MessagePage[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"next_cursor,omitempty"`
}
