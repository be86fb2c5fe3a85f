package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nikhil/teamchat/internal/config"
	"github.com/nikhil/teamchat/internal/logger"
	"github.com/nikhil/teamchat/internal/models"
	"github.com/nikhil/teamchat/internal/realtime"
	"github.com/nikhil/teamchat/internal/routes"
	"github.com/nikhil/teamchat/internal/service/access"
	"github.com/nikhil/teamchat/internal/service/auth"
	"github.com/nikhil/teamchat/internal/service/channels"
	"github.com/nikhil/teamchat/internal/service/messages"
	"github.com/nikhil/teamchat/internal/service/team"
	"github.com/nikhil/teamchat/internal/service/users"
	"github.com/nikhil/teamchat/internal/store/storetest"
)

type api struct {
	t   *testing.T
	url string
}

func newAPI(t *testing.T) *api {
	t.Helper()

	log := logger.NewNop()
	s := storetest.New(t)
	engine := access.NewEngine(s, log)

	ctx, cancel := context.WithCancel(context.Background())
	hub := realtime.NewHub(log)
	go hub.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-hub.Done()
	})

	authService := auth.NewAuthService(s, config.AuthConfig{
		JWTSecret:       "test-secret",
		RefreshSecret:   "test-refresh-secret",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, log, auth.WithBcryptCost(bcrypt.MinCost))
	channelService := channels.NewChannelService(s, engine, log)

	router := routes.RegisterAllRoutes(&routes.Deps{
		Auth:     authService,
		Teams:    team.NewTeamService(s, engine, log),
		Channels: channelService,
		Messages: messages.NewMessageService(s, engine, hub, log),
		Profiles: users.NewProfileService(s, log),
		Health:   s,
		Realtime: &realtime.Endpoint{
			Hub:         hub,
			Auth:        authService,
			Channels:    channelService,
			SendBuffer:  16,
			AuthTimeout: time.Second,
			Log:         log,
		},
		AllowedOrigins: []string{"*"},
		Log:            log,
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &api{t: t, url: srv.URL}
}

func (a *api) do(method, path, token string, body, out interface{}) int {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.url+path, &buf)
	require.NoError(a.t, err)
	if token != "" {
		req.Header.Set("x-token", token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()
	assert.Equal(a.t, "application/json", resp.Header.Get("Content-Type"))
	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (a *api) signup(name string) string {
	a.t.Helper()

	var res models.AuthResult
	status := a.do(http.MethodPost, "/auth/signup", "", map[string]string{
		"email":    name + "@example.com",
		"username": name,
		"password": "secret-" + name,
	}, &res)
	require.Equal(a.t, http.StatusCreated, status, "%+v", res.Errors)
	require.NotEmpty(a.t, res.Token)
	return res.Token
}

func TestTeamChatFlow(t *testing.T) {
	a := newAPI(t)
	alice := a.signup("alice")
	bob := a.signup("bob")

	var login models.AuthResult
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "secret-alice",
	}, &login))
	assert.True(t, login.OK)

	var created models.TeamResult
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/team/create", alice, map[string]string{"name": "acme"}, &created))
	teamID := created.Team.ID

	var denied models.MutationResult
	assert.Equal(t, http.StatusForbidden, a.do(http.MethodPost, fmt.Sprintf("/team/%d/members", teamID), bob, map[string]string{"email": "bob@example.com"}, &denied))
	assert.False(t, denied.OK)

	var added models.MutationResult
	require.Equal(t, http.StatusOK, a.do(http.MethodPost, fmt.Sprintf("/team/%d/members", teamID), alice, map[string]string{"email": "bob@example.com"}, &added))
	assert.True(t, added.OK)

	var listed struct {
		Channels []models.Channel `json:"channels"`
	}
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, fmt.Sprintf("/team/%d/channels", teamID), bob, nil, &listed))
	require.Len(t, listed.Channels, 1)
	general := listed.Channels[0]
	assert.Equal(t, models.DefaultChannelName, general.Name)

	var msg models.MessageResult
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/message/create", bob, map[string]interface{}{
		"channelId": general.ID, "text": "hi all",
	}, &msg))

	var page models.MessagePage[models.Message]
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, fmt.Sprintf("/channel/%d/messages?limit=10", general.ID), alice, nil, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "bob", page.Items[0].User.Username)

	var bad map[string]interface{}
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, fmt.Sprintf("/channel/%d/messages?cursor=@@", general.ID), alice, nil, &bad))

	var dm models.DirectMessageResult
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/message/direct", alice, map[string]interface{}{
		"teamId": teamID, "receiverId": msg.Message.User.ID, "text": "psst",
	}, &dm))
	var partners struct {
		Users []models.UserSummary `json:"users"`
	}
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, fmt.Sprintf("/team/%d/dm/users", teamID), alice, nil, &partners))
	assert.Equal(t, []models.UserSummary{{ID: msg.Message.User.ID, Username: "bob"}}, partners.Users)
}

func TestProfileAndAuth(t *testing.T) {
	a := newAPI(t)
	alice := a.signup("alice")

	var failed models.AuthResult
	assert.Equal(t, http.StatusConflict, a.do(http.MethodPost, "/auth/signup", "", map[string]string{
		"email": "alice@example.com", "username": "other", "password": "secret",
	}, &failed))
	assert.Equal(t, "email", failed.Errors[0].Path)

	var unauthorized map[string]interface{}
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/user/profile", "", nil, &unauthorized))
	assert.Equal(t, http.StatusUnauthorized, a.do(http.MethodGet, "/user/profile", "garbage", nil, &unauthorized))

	var updated models.UserResult
	require.Equal(t, http.StatusOK, a.do(http.MethodPut, "/user/profile", alice, map[string]string{"username": "alicia"}, &updated))
	assert.Equal(t, "alicia", updated.User.Username)

	var profile struct {
		User models.User `json:"user"`
	}
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/user/profile", alice, nil, &profile))
	assert.Equal(t, "alicia", profile.User.Username)

	var health map[string]string
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, "/health", "", nil, &health))
	assert.Equal(t, "ok", health["status"])
}

func TestSubscriptionsDeliverCreatedMessages(t *testing.T) {
	a := newAPI(t)
	alice := a.signup("alice")

	var created models.TeamResult
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/team/create", alice, map[string]string{"name": "acme"}, &created))
	var listed struct {
		Channels []models.Channel `json:"channels"`
	}
	require.Equal(t, http.StatusOK, a.do(http.MethodGet, fmt.Sprintf("/team/%d/channels", created.Team.ID), alice, nil, &listed))
	general := listed.Channels[0]

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(a.url, "http")+"/subscriptions", nil)
	require.NoError(t, err)
	defer conn.Close()
	read := func() realtime.Frame {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var f realtime.Frame
		require.NoError(t, conn.ReadJSON(&f))
		return f
	}

	require.NoError(t, conn.WriteJSON(realtime.Frame{Type: realtime.TypeConnectionInit, Token: alice}))
	require.Equal(t, realtime.TypeConnectionAck, read().Type)
	require.NoError(t, conn.WriteJSON(realtime.Frame{Type: realtime.TypeSubscribe, ID: "general", ChannelID: general.ID}))
	require.Equal(t, realtime.TypeSubscribed, read().Type)

	var msg models.MessageResult
	require.Equal(t, http.StatusCreated, a.do(http.MethodPost, "/message/create", alice, map[string]interface{}{
		"channelId": general.ID, "text": "live",
	}, &msg))

	data := read()
	assert.Equal(t, realtime.TypeData, data.Type)
	assert.Equal(t, "general", data.ID)
	var got models.Message
	require.NoError(t, json.Unmarshal(data.Payload, &got))
	assert.Equal(t, msg.Message.ID, got.ID)
	assert.Equal(t, "live", got.Text)
}
