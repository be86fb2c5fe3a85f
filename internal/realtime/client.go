package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/nikhil/teamchat/internal/logger"
	"github.com/nikhil/teamchat/internal/models"
	"github.com/nikhil/teamchat/internal/service/auth"
)

// Authenticator resolves the user behind connection credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, token, refreshToken string) (int64, *auth.Tokens, error)
}

// ChannelAuthorizer returns the channel when userID may read it.
type ChannelAuthorizer interface {
	GetChannel(ctx context.Context, userID, channelID int64) (*models.Channel, error)
}

// Client is one authenticated websocket connection.
type Client struct {
	ID     string
	UserID int64

	conn *websocket.Conn
	// Buffered channel of outbound frames, closed by the hub.
	send chan []byte
	// channel id -> subscription id, owned by the hub
	channels map[int64]string
}

func newClient(conn *websocket.Conn, userID int64, buffer int) *Client {
	return &Client{
		ID:       uuid.NewString(),
		UserID:   userID,
		conn:     conn,
		send:     make(chan []byte, buffer),
		channels: make(map[int64]string),
	}
}

// Endpoint runs the subscription protocol on upgraded connections.
type Endpoint struct {
	Hub         *Hub
	Auth        Authenticator
	Channels    ChannelAuthorizer
	SendBuffer  int
	AuthTimeout time.Duration
	Log         *logger.Logger
}

// Serve drives conn until it closes. The first frame must be connection_init
// with valid credentials, otherwise the connection is closed without ever
// reaching the hub.
func (e *Endpoint) Serve(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	userID, err := e.handshake(ctx, conn)
	if err != nil {
		e.Log.Warn("Websocket authentication failed", "remote_addr", conn.RemoteAddr().String(), "error", err)
		reject(conn, err)
		return
	}

	c := newClient(conn, userID, e.SendBuffer)
	log := e.Log.WithUser(userID).WithFields(map[string]interface{}{"client_id": c.ID})
	if err := e.Hub.Register(ctx, c); err != nil {
		log.Warn("Failed to register client", "error", err)
		return
	}
	log.Debug("Client connected")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump()
	e.readPump(ctx, c, log)

	e.Hub.Unregister(c)
	log.Debug("Client disconnected")
}

func (e *Endpoint) handshake(ctx context.Context, conn *websocket.Conn) (int64, error) {
	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(e.AuthTimeout)); err != nil {
		return 0, err
	}

	var init Frame
	if err := conn.ReadJSON(&init); err != nil {
		return 0, fmt.Errorf("read connection_init: %w", err)
	}
	if init.Type != TypeConnectionInit {
		return 0, fmt.Errorf("expected %s, got %q", TypeConnectionInit, init.Type)
	}

	userID, refreshed, err := e.Auth.Authenticate(ctx, init.Token, init.RefreshToken)
	if err != nil {
		return 0, err
	}

	ack := Frame{Type: TypeConnectionAck}
	if refreshed != nil {
		ack.Token = refreshed.Token
		ack.RefreshToken = refreshed.RefreshToken
	}
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return 0, err
	}
	if err := conn.WriteJSON(ack); err != nil {
		return 0, fmt.Errorf("write connection_ack: %w", err)
	}
	return userID, nil
}

func reject(conn *websocket.Conn, err error) {
	message := "unauthorized"
	if errors.Is(err, auth.ErrExpiredToken) {
		message = "token expired"
	}

	deadline := time.Now().Add(writeWait)
	_ = conn.SetWriteDeadline(deadline)
	_ = conn.WriteJSON(errorFrame("", message))
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, message), deadline)
}

// readPump pumps frames from the websocket connection to the hub
func (e *Endpoint) readPump(ctx context.Context, c *Client, log *logger.Logger) {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warn("Websocket closed unexpectedly", "error", err)
			}
			return
		}

		var f Frame
		if err := json.Unmarshal(data, &f); err != nil {
			e.reply(ctx, c, errorFrame("", "malformed frame"))
			continue
		}

		switch f.Type {
		case TypeSubscribe:
			e.subscribe(ctx, c, f, log)
		case TypeUnsubscribe:
			if err := e.Hub.Unsubscribe(ctx, c, f.ChannelID, subscriptionID(f)); err != nil {
				return
			}
		case TypeConnectionInit:
			e.reply(ctx, c, errorFrame(f.ID, "connection already initialised"))
		default:
			e.reply(ctx, c, errorFrame(f.ID, fmt.Sprintf("unknown frame type %q", f.Type)))
		}
	}
}

func (e *Endpoint) subscribe(ctx context.Context, c *Client, f Frame, log *logger.Logger) {
	id := subscriptionID(f)
	if f.ChannelID <= 0 {
		e.reply(ctx, c, errorFrame(id, "channelId is required"))
		return
	}

	if _, err := e.Channels.GetChannel(ctx, c.UserID, f.ChannelID); err != nil {
		log.Warn("Subscription denied", "channel_id", f.ChannelID)
		e.reply(ctx, c, errorFrame(id, "You cannot subscribe to this channel"))
		return
	}

	if err := e.Hub.Subscribe(ctx, c, f.ChannelID, id); err != nil {
		log.Warn("Failed to subscribe", "channel_id", f.ChannelID, "error", err)
	}
}

func (e *Endpoint) reply(ctx context.Context, c *Client, f Frame) {
	_ = e.Hub.Reply(ctx, c, f)
}

func subscriptionID(f Frame) string {
	if f.ID != "" {
		return f.ID
	}
	return strconv.FormatInt(f.ChannelID, 10)
}

// writePump pumps frames from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
