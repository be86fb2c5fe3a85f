package channels_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/teamchat/internal/apperrors"
	"github.com/nikhil/teamchat/internal/logger"
	"github.com/nikhil/teamchat/internal/service/access"
	"github.com/nikhil/teamchat/internal/service/channels"
	"github.com/nikhil/teamchat/internal/store"
	"github.com/nikhil/teamchat/internal/store/storetest"
)

func newService(t *testing.T) (*channels.ChannelService, *store.Store) {
	t.Helper()

	s := storetest.New(t)
	return channels.NewChannelService(s, access.NewEngine(s, logger.NewNop()), logger.NewNop()), s
}

func TestCreateChannel_PrivateListsCreatorAndMembers(t *testing.T) {
	svc, s := newService(t)
	ctx := context.Background()
	alice := storetest.User(t, s, "alice")
	bob := storetest.User(t, s, "bob")
	carol := storetest.User(t, s, "carol")
	acme, _ := storetest.Team(t, s, "acme", alice)
	storetest.Member(t, s, acme, bob)
	storetest.Member(t, s, acme, carol)

	res := svc.CreateChannel(ctx, alice.ID, channels.CreateChannelRequest{
		TeamID:  acme.ID,
		Name:    "secret",
		Members: []int64{bob.ID, bob.ID, alice.ID},
	})

	require.True(t, res.OK, "%+v", res.Errors)
	assert.False(t, res.Channel.Public)

	ids, err := s.PrivateChannelMemberIDs(ctx, res.Channel.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{alice.ID, bob.ID}, ids)

	visible, err := svc.GetChannel(ctx, bob.ID, res.Channel.ID)
	require.NoError(t, err)
	assert.Equal(t, "secret", visible.Name)

	_, err = svc.GetChannel(ctx, carol.ID, res.Channel.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCreateChannel_Public(t *testing.T) {
	svc, s := newService(t)
	ctx := context.Background()
	alice := storetest.User(t, s, "alice")
	acme, _ := storetest.Team(t, s, "acme", alice)

	res := svc.CreateChannel(ctx, alice.ID, channels.CreateChannelRequest{TeamID: acme.ID, Name: "random", Public: true})

	require.True(t, res.OK)
	ids, err := s.PrivateChannelMemberIDs(ctx, res.Channel.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCreateChannel_Failures(t *testing.T) {
	svc, s := newService(t)
	alice := storetest.User(t, s, "alice")
	bob := storetest.User(t, s, "bob")
	outsider := storetest.User(t, s, "mallory")
	acme, _ := storetest.Team(t, s, "acme", alice)
	storetest.Member(t, s, acme, bob)

	tests := []struct {
		name      string
		requester int64
		req       channels.CreateChannelRequest
		want      apperrors.FieldError
	}{
		{
			name:      "not admin",
			requester: bob.ID,
			req:       channels.CreateChannelRequest{TeamID: acme.ID, Name: "x", Public: true},
			want:      apperrors.FieldError{Path: "name", Message: "You have to be the owner of the team to create channels"},
		},
		{
			name:      "member outside team",
			requester: alice.ID,
			req:       channels.CreateChannelRequest{TeamID: acme.ID, Name: "x", Members: []int64{outsider.ID}},
			want:      apperrors.FieldError{Path: "members", Message: fmt.Sprintf("User %d is not a member of this team", outsider.ID)},
		},
		{
			name:      "missing name",
			requester: alice.ID,
			req:       channels.CreateChannelRequest{TeamID: acme.ID},
			want:      apperrors.FieldError{Path: "name", Message: "name is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := svc.CreateChannel(context.Background(), tt.requester, tt.req)

			assert.False(t, res.OK)
			assert.Nil(t, res.Channel)
			assert.Equal(t, []apperrors.FieldError{tt.want}, res.Errors)
		})
	}
}

func TestGetChannel_Missing(t *testing.T) {
	svc, s := newService(t)
	alice := storetest.User(t, s, "alice")

	_, err := svc.GetChannel(context.Background(), alice.ID, 999)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
