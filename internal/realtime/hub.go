// Package realtime is the live delivery side of the chat: a hub that owns the
// channel subscriber registry and the websocket connections feeding it.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nikhil/teamchat/internal/logger"
)

// ErrHubClosed is returned once the hub has stopped running.
var ErrHubClosed = errors.New("realtime: hub closed")

// Audience limits a publish to a set of users. A nil Audience allows every
// subscriber.
type Audience map[int64]struct{}

// Users builds an audience from user ids.
func Users(ids ...int64) Audience {
	a := make(Audience, len(ids))
	for _, id := range ids {
		a[id] = struct{}{}
	}
	return a
}

// Allows reports whether userID may receive the publish.
func (a Audience) Allows(userID int64) bool {
	if a == nil {
		return true
	}
	_, ok := a[userID]
	return ok
}

// Hub maintains the set of active clients and fans channel messages out to
// their subscribers. All registry state is owned by the Run goroutine; every
// other method hands it a closure and waits for it to run.
type Hub struct {
	ops  chan func()
	done chan struct{}
	log  *logger.Logger

	// owned by Run
	clients  map[*Client]struct{}
	channels map[int64]map[*Client]string
}

// NewHub creates a new Hub instance
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		ops:      make(chan func()),
		done:     make(chan struct{}),
		log:      log,
		clients:  make(map[*Client]struct{}),
		channels: make(map[int64]map[*Client]string),
	}
}

// Run serves registry operations until ctx is cancelled. On exit every client
// is dropped and later calls fail with ErrHubClosed.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for c := range h.clients {
			h.drop(c)
		}
		close(h.done)
		h.log.Info("Hub stopped")
	}()

	h.log.Info("Hub started")
	for {
		select {
		case op := <-h.ops:
			op()
		case <-ctx.Done():
			return
		}
	}
}

// Done is closed when Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	op := func() {
		defer close(finished)
		fn()
	}

	select {
	case h.ops <- op:
	case <-ctx.Done():
		return ctx.Err()
	case <-h.done:
		return ErrHubClosed
	}
	<-finished
	return nil
}

// Register adds an authenticated client.
func (h *Hub) Register(ctx context.Context, c *Client) error {
	return h.do(ctx, func() {
		h.clients[c] = struct{}{}
	})
}

// Unregister removes c from every channel and closes its send buffer. It is
// safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	_ = h.do(context.Background(), func() {
		h.drop(c)
	})
}

// Subscribe adds c to channelID under the client chosen subscription id and
// confirms with a subscribed frame.
func (h *Hub) Subscribe(ctx context.Context, c *Client, channelID int64, subID string) error {
	return h.do(ctx, func() {
		if _, ok := h.clients[c]; !ok {
			return
		}
		subs, ok := h.channels[channelID]
		if !ok {
			subs = make(map[*Client]string)
			h.channels[channelID] = subs
		}
		subs[c] = subID
		c.channels[channelID] = subID
		h.enqueue(c, Frame{Type: TypeSubscribed, ID: subID, ChannelID: channelID})
	})
}

// Unsubscribe removes c from channelID.
func (h *Hub) Unsubscribe(ctx context.Context, c *Client, channelID int64, subID string) error {
	return h.do(ctx, func() {
		if _, ok := h.clients[c]; !ok {
			return
		}
		h.unsubscribe(c, channelID)
		h.enqueue(c, Frame{Type: TypeUnsubscribed, ID: subID, ChannelID: channelID})
	})
}

// Reply queues a frame for a single client.
func (h *Hub) Reply(ctx context.Context, c *Client, f Frame) error {
	return h.do(ctx, func() {
		if _, ok := h.clients[c]; ok {
			h.enqueue(c, f)
		}
	})
}

// Publish delivers payload to every subscriber of channelID that audience
// allows and returns how many clients it was queued for. Subscribers outside
// the audience lose their subscription. The message is queued for all
// recipients before any later publish is looked at, so subscribers of a
// channel observe publishes in the same order.
func (h *Hub) Publish(ctx context.Context, channelID int64, audience Audience, payload interface{}) (int, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("encode payload: %w", err)
	}

	delivered := 0
	err = h.do(ctx, func() {
		for c, subID := range h.channels[channelID] {
			if !audience.Allows(c.UserID) {
				h.log.Warn("Dropping subscription of user without access", "channel_id", channelID, "user_id", c.UserID, "client_id", c.ID)
				h.unsubscribe(c, channelID)
				continue
			}
			if h.enqueue(c, Frame{Type: TypeData, ID: subID, ChannelID: channelID, Payload: raw}) {
				delivered++
			}
		}
	})
	return delivered, err
}

// SubscriberCount returns the number of clients subscribed to channelID.
func (h *Hub) SubscriberCount(ctx context.Context, channelID int64) (int, error) {
	n := 0
	err := h.do(ctx, func() {
		n = len(h.channels[channelID])
	})
	return n, err
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount(ctx context.Context) (int, error) {
	n := 0
	err := h.do(ctx, func() {
		n = len(h.clients)
	})
	return n, err
}

// enqueue never blocks: a client whose buffer is full is evicted.
func (h *Hub) enqueue(c *Client, f Frame) bool {
	msg, err := json.Marshal(f)
	if err != nil {
		h.log.Error("Failed to encode frame", "type", f.Type, "error", err)
		return false
	}

	select {
	case c.send <- msg:
		return true
	default:
		h.log.Warn("Evicting slow client", "client_id", c.ID, "user_id", c.UserID)
		h.drop(c)
		return false
	}
}

func (h *Hub) unsubscribe(c *Client, channelID int64) {
	delete(c.channels, channelID)
	if subs, ok := h.channels[channelID]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.channels, channelID)
		}
	}
}

func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	for channelID := range c.channels {
		h.unsubscribe(c, channelID)
	}
	delete(h.clients, c)
	close(c.send)
}
