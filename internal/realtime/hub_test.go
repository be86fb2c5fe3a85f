package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/teamchat/internal/logger"
)

func startHub(t *testing.T) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(logger.NewNop())
	go h.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-h.Done()
	})
	return h
}

func register(t *testing.T, h *Hub, userID int64, buffer int) *Client {
	t.Helper()

	c := newClient(nil, userID, buffer)
	require.NoError(t, h.Register(context.Background(), c))
	return c
}

func subscribe(t *testing.T, h *Hub, c *Client, channelID int64) {
	t.Helper()

	require.NoError(t, h.Subscribe(context.Background(), c, channelID, fmt.Sprintf("sub-%d", channelID)))
	f := next(t, c)
	require.Equal(t, TypeSubscribed, f.Type)
}

func next(t *testing.T, c *Client) Frame {
	t.Helper()

	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "send buffer closed")
		var f Frame
		require.NoError(t, json.Unmarshal(msg, &f))
		return f
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for frame")
		return Frame{}
	}
}

func assertNothing(t *testing.T, c *Client) {
	t.Helper()

	select {
	case msg := <-c.send:
		t.Fatalf("unexpected frame %s", msg)
	default:
	}
}

func TestHub_PublishReachesOnlyThatChannel(t *testing.T) {
	h := startHub(t)
	ctx := context.Background()
	a := register(t, h, 1, 8)
	b := register(t, h, 2, 8)
	other := register(t, h, 3, 8)
	subscribe(t, h, a, 10)
	subscribe(t, h, b, 10)
	subscribe(t, h, other, 20)

	n, err := h.Publish(ctx, 10, nil, map[string]string{"text": "hi"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, c := range []*Client{a, b} {
		f := next(t, c)
		assert.Equal(t, TypeData, f.Type)
		assert.Equal(t, "sub-10", f.ID)
		assert.Equal(t, int64(10), f.ChannelID)
		assert.JSONEq(t, `{"text":"hi"}`, string(f.Payload))
	}
	assertNothing(t, other)
}

func TestHub_UnsubscribeBeforePublish(t *testing.T) {
	h := startHub(t)
	ctx := context.Background()
	c := register(t, h, 1, 8)
	subscribe(t, h, c, 10)

	require.NoError(t, h.Unsubscribe(ctx, c, 10, "sub-10"))
	assert.Equal(t, TypeUnsubscribed, next(t, c).Type)

	n, err := h.Publish(ctx, 10, nil, "ignored")
	require.NoError(t, err)
	assert.Zero(t, n)
	assertNothing(t, c)
}

func TestHub_UnregisterRemovesEverySubscriptionAndIsIdempotent(t *testing.T) {
	h := startHub(t)
	ctx := context.Background()
	c := register(t, h, 1, 8)
	subscribe(t, h, c, 10)
	subscribe(t, h, c, 11)

	h.Unregister(c)
	h.Unregister(c)

	for _, ch := range []int64{10, 11} {
		n, err := h.SubscriberCount(ctx, ch)
		require.NoError(t, err)
		assert.Zero(t, n)
	}
	clients, err := h.ClientCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, clients)

	_, ok := <-c.send
	assert.False(t, ok)

	// subscribing after close is ignored
	require.NoError(t, h.Subscribe(ctx, c, 10, "late"))
	n, err := h.SubscriberCount(ctx, 10)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHub_FullClientIsEvictedWithoutBlockingOthers(t *testing.T) {
	h := startHub(t)
	ctx := context.Background()
	slow := register(t, h, 1, 2)
	fast := register(t, h, 2, 64)
	subscribe(t, h, slow, 10)
	subscribe(t, h, fast, 10)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			_, err := h.Publish(ctx, 10, nil, i)
			assert.NoError(t, err)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	for i := 0; i < 10; i++ {
		assert.Equal(t, fmt.Sprint(i), string(next(t, fast).Payload))
	}

	// the slow client got what fit and was then closed
	received := 0
	for range slow.send {
		received++
	}
	assert.Equal(t, 2, received)

	n, err := h.SubscriberCount(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestHub_AudienceDropsSubscribersWithoutAccess(t *testing.T) {
	h := startHub(t)
	ctx := context.Background()
	member := register(t, h, 1, 8)
	removed := register(t, h, 2, 8)
	subscribe(t, h, member, 10)
	subscribe(t, h, removed, 10)

	n, err := h.Publish(ctx, 10, Users(1), "secret")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, TypeData, next(t, member).Type)
	assertNothing(t, removed)

	count, err := h.SubscriberCount(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHub_SubscribersSeeTheSameOrder(t *testing.T) {
	h := startHub(t)
	ctx := context.Background()
	clients := []*Client{register(t, h, 1, 256), register(t, h, 2, 256), register(t, h, 3, 256)}
	for _, c := range clients {
		subscribe(t, h, c, 10)
	}

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				_, err := h.Publish(ctx, 10, nil, fmt.Sprintf("%d-%d", w, i))
				assert.NoError(t, err)
			}
		}(w)
	}
	wg.Wait()

	var want []string
	for i := 0; i < 100; i++ {
		want = append(want, string(next(t, clients[0]).Payload))
	}
	for _, c := range clients[1:] {
		for i := 0; i < 100; i++ {
			assert.Equal(t, want[i], string(next(t, c).Payload))
		}
	}
}

func TestHub_ClosedHub(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub(logger.NewNop())
	go h.Run(ctx)

	c := newClient(nil, 1, 4)
	require.NoError(t, h.Register(context.Background(), c))

	cancel()
	<-h.Done()

	_, ok := <-c.send
	assert.False(t, ok, "clients are closed on shutdown")

	_, err := h.Publish(context.Background(), 10, nil, "x")
	assert.ErrorIs(t, err, ErrHubClosed)
	h.Unregister(c)
}

func TestAudience(t *testing.T) {
	var everyone Audience
	assert.True(t, everyone.Allows(42))
	assert.True(t, Users(1, 2).Allows(2))
	assert.False(t, Users(1, 2).Allows(3))
	assert.False(t, Users().Allows(1))
}
