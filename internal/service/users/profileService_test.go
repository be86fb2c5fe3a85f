package users_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/teamchat/internal/apperrors"
	"github.com/nikhil/teamchat/internal/logger"
	"github.com/nikhil/teamchat/internal/service/users"
	"github.com/nikhil/teamchat/internal/store/storetest"
)

func TestGetProfile(t *testing.T) {
	s := storetest.New(t)
	svc := users.NewProfileService(s, logger.NewNop())
	alice := storetest.User(t, s, "alice")

	got, err := svc.GetProfile(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = svc.GetProfile(context.Background(), 404)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	s := storetest.New(t)
	svc := users.NewProfileService(s, logger.NewNop())
	alice := storetest.User(t, s, "alice")
	storetest.User(t, s, "bob")
	ctx := context.Background()

	res := svc.UpdateProfile(ctx, alice.ID, users.UpdateProfileRequest{Username: " alicia "})
	require.True(t, res.OK, "%+v", res.Errors)
	assert.Equal(t, "alicia", res.User.Username)

	res = svc.UpdateProfile(ctx, alice.ID, users.UpdateProfileRequest{Username: "bob"})
	assert.False(t, res.OK)
	assert.Equal(t, []apperrors.FieldError{{Path: "username", Message: "Username is already taken"}}, res.Errors)

	res = svc.UpdateProfile(ctx, alice.ID, users.UpdateProfileRequest{Username: "no spaces"})
	assert.False(t, res.OK)
	assert.Equal(t, []apperrors.FieldError{{Path: "username", Message: "username can only contain letters and numbers"}}, res.Errors)

	// unchanged name is not a conflict
	res = svc.UpdateProfile(ctx, alice.ID, users.UpdateProfileRequest{Username: "alicia"})
	assert.True(t, res.OK)
}
