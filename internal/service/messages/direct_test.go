package messages_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/teamchat/internal/apperrors"
	"github.com/nikhil/teamchat/internal/service/messages"
)

func TestDirectMessages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.svc.CreateDirectMessage(ctx, f.alice.ID, messages.CreateDirectMessageRequest{TeamID: f.team.ID, ReceiverID: f.bob.ID, Text: "hi bob"})
	require.True(t, res.OK, "%+v", res.Errors)
	assert.Equal(t, "alice", res.Message.Sender.Username)

	res = f.svc.CreateDirectMessage(ctx, f.bob.ID, messages.CreateDirectMessageRequest{TeamID: f.team.ID, ReceiverID: f.alice.ID, Text: "hi alice"})
	require.True(t, res.OK)

	page, err := f.svc.ListDirectMessages(ctx, f.alice.ID, f.team.ID, f.bob.ID, "", 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "hi alice", page.Items[0].Text)
	require.NotEmpty(t, page.NextCursor)

	page, err = f.svc.ListDirectMessages(ctx, f.bob.ID, f.team.ID, f.alice.ID, page.NextCursor, 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "hi bob", page.Items[0].Text)

	// no thread between carol and bob
	page, err = f.svc.ListDirectMessages(ctx, f.carol.ID, f.team.ID, f.bob.ID, "", 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	// live channel delivery is for channel messages only
	assert.Empty(t, f.pub.all())
}

func TestCreateDirectMessage_Rejected(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		sender int64
		req    messages.CreateDirectMessageRequest
		want   apperrors.FieldError
	}{
		{
			name:   "to self",
			sender: f.alice.ID,
			req:    messages.CreateDirectMessageRequest{TeamID: f.team.ID, ReceiverID: f.alice.ID, Text: "me"},
			want:   apperrors.FieldError{Path: "receiverId", Message: "You cannot message yourself"},
		},
		{
			name:   "receiver outside team",
			sender: f.alice.ID,
			req:    messages.CreateDirectMessageRequest{TeamID: f.team.ID, ReceiverID: f.carol.ID, Text: "hi"},
			want:   apperrors.FieldError{Path: "receiverId", Message: "Could not find this user in the team"},
		},
		{
			name:   "sender outside team",
			sender: f.carol.ID,
			req:    messages.CreateDirectMessageRequest{TeamID: f.team.ID, ReceiverID: f.alice.ID, Text: "hi"},
			want:   apperrors.FieldError{Path: "teamId", Message: "You are not a member of this team"},
		},
		{
			name:   "empty text",
			sender: f.alice.ID,
			req:    messages.CreateDirectMessageRequest{TeamID: f.team.ID, ReceiverID: f.bob.ID},
			want:   apperrors.FieldError{Path: "text", Message: "text is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.svc.CreateDirectMessage(context.Background(), tt.sender, tt.req)

			assert.False(t, res.OK)
			assert.Equal(t, []apperrors.FieldError{tt.want}, res.Errors)
		})
	}
}
