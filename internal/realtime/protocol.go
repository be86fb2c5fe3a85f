package realtime

import (
	"encoding/json"
	"time"
)

// Frame types exchanged over a subscription connection.
const (
	// client -> server
	TypeConnectionInit = "connection_init"
	TypeSubscribe      = "subscribe"
	TypeUnsubscribe    = "unsubscribe"

	// server -> client
	TypeConnectionAck = "connection_ack"
	TypeSubscribed    = "subscribed"
	TypeUnsubscribed  = "unsubscribed"
	TypeData          = "data"
	TypeError         = "error"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from the peer
	maxMessageSize = 4096
)

// Frame is the single JSON envelope used in both directions. Only the fields
// relevant to Type are set.
type Frame struct {
	Type         string          `json:"type"`
	ID           string          `json:"id,omitempty"`
	ChannelID    int64           `json:"channelId,omitempty"`
	Token        string          `json:"token,omitempty"`
	RefreshToken string          `json:"refreshToken,omitempty"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Message      string          `json:"message,omitempty"`
}

func errorFrame(id, message string) Frame {
	return Frame{Type: TypeError, ID: id, Message: message}
}
