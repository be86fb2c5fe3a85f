package access_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nikhil/teamchat/internal/logger"
	"github.com/nikhil/teamchat/internal/service/access"
	"github.com/nikhil/teamchat/internal/store/storetest"
)

func TestEngine_AgainstStore(t *testing.T) {
	ctx := context.Background()
	s := storetest.New(t)
	alice := storetest.User(t, s, "alice")
	bob := storetest.User(t, s, "bob")
	outsider := storetest.User(t, s, "mallory")
	team, general := storetest.Team(t, s, "acme", alice)
	storetest.Member(t, s, team, bob)
	secret := storetest.Channel(t, s, team, "secret", false, alice)
	storetest.DirectMessage(t, s, team, bob, alice, "hey")

	e := access.NewEngine(s, logger.NewNop())

	assert.True(t, e.IsAdmin(ctx, team.ID, alice.ID))
	assert.False(t, e.IsAdmin(ctx, team.ID, bob.ID))

	assert.True(t, e.CanAccessChannel(ctx, alice.ID, secret))
	assert.False(t, e.CanAccessChannel(ctx, bob.ID, secret))
	assert.True(t, e.CanAccessChannel(ctx, bob.ID, general))
	assert.False(t, e.CanAccessChannel(ctx, outsider.ID, general))

	assert.True(t, e.CanViewThread(ctx, team.ID, alice.ID, bob.ID))
	assert.True(t, e.CanViewThread(ctx, team.ID, bob.ID, alice.ID))
	assert.False(t, e.CanViewThread(ctx, team.ID, alice.ID, outsider.ID))
}
