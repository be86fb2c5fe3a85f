//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	"github.com/nikhil/teamchat/internal/apperrors"
	"github.com/nikhil/teamchat/internal/config"
	"github.com/nikhil/teamchat/internal/database"
	"github.com/nikhil/teamchat/internal/logger"
	"github.com/nikhil/teamchat/internal/models"
	"github.com/nikhil/teamchat/internal/store"
	"github.com/nikhil/teamchat/internal/store/storetest"
)

func setupMySQL(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()

	ctr, err := mysql.Run(ctx, "mysql:8.0.36",
		mysql.WithDatabase("teamchat"),
		mysql.WithUsername("teamchat"),
		mysql.WithPassword("teamchat"),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Driver:          "mysql",
		Host:            host,
		Port:            port.Port(),
		User:            "teamchat",
		Password:        "teamchat",
		Name:            "teamchat",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		ConnectTimeout:  time.Minute,
	}
	require.NoError(t, database.Migrate(cfg))

	db, err := database.Open(ctx, cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return store.New(db, logger.NewNop(), store.WithClock(storetest.NewClock(time.Now().UnixMilli()).Now))
}

func TestMySQL_ErrorTranslation(t *testing.T) {
	s := setupMySQL(t)
	ctx := context.Background()

	alice := storetest.User(t, s, "alice")
	_, err := s.CreateUser(ctx, "alice@example.com", "alice2", "hash")
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	team, _ := storetest.Team(t, s, "acme", alice)
	err = s.InsertMember(ctx, &models.Member{TeamID: team.ID, UserID: alice.ID})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	err = s.InsertMember(ctx, &models.Member{TeamID: team.ID, UserID: 999999})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = s.GetTeam(ctx, 999999)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMySQL_TransactionRollsBack(t *testing.T) {
	s := setupMySQL(t)
	ctx := context.Background()
	alice := storetest.User(t, s, "alice")

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx *store.Tx) error {
		if err := tx.InsertTeam(ctx, &models.Team{Name: "ghost"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	teams, err := s.ListTeamsForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Empty(t, teams)

	// the name is still free
	storetest.Team(t, s, "ghost", alice)
}

func TestMySQL_VisibilityAndHistory(t *testing.T) {
	s := setupMySQL(t)
	ctx := context.Background()

	alice := storetest.User(t, s, "alice")
	bob := storetest.User(t, s, "bob")
	team, general := storetest.Team(t, s, "acme", alice)
	storetest.Member(t, s, team, bob)
	secret := storetest.Channel(t, s, team, "secret", false, alice)

	visible, err := s.ListVisibleChannels(ctx, team.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, general.ID, visible[0].ID)

	visible, err = s.ListVisibleChannels(ctx, team.ID, alice.ID)
	require.NoError(t, err)
	assert.Len(t, visible, 2)

	for _, text := range []string{"one", "two", "three"} {
		require.NoError(t, s.InsertMessage(ctx, &models.Message{ChannelID: secret.ID, Text: text, User: models.UserSummary{ID: alice.ID}}))
	}
	first, err := s.ListMessages(ctx, secret.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, "three", first[0].Text)

	last := first[1]
	rest, err := s.ListMessages(ctx, secret.ID, &store.Position{CreatedAt: last.CreatedAt, ID: last.ID}, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "one", rest[0].Text)
}
