// Package storetest builds migrated SQLite stores and fixtures for tests.
package storetest

import (
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nikhil/teamchat/internal/config"
	"github.com/nikhil/teamchat/internal/database"
	"github.com/nikhil/teamchat/internal/logger"
	"github.com/nikhil/teamchat/internal/models"
	"github.com/nikhil/teamchat/internal/store"
)

// Clock is a monotonic millisecond clock that advances by one on every read.
type Clock struct {
	ms atomic.Int64
}

// NewClock starts a clock at start.
func NewClock(start int64) *Clock {
	c := &Clock{}
	c.ms.Store(start)
	return c
}

// Now returns the next tick.
func (c *Clock) Now() int64 {
	return c.ms.Add(1)
}

// New returns a store over a fresh, migrated SQLite file that is removed when
// the test ends.
func New(t testing.TB, opts ...store.Option) *store.Store {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:         "sqlite",
		Path:           filepath.Join(t.TempDir(), "teamchat.db"),
		ConnectTimeout: 5 * time.Second,
	}
	require.NoError(t, database.Migrate(cfg))

	db, err := database.Open(context.Background(), cfg, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return store.New(db, logger.NewNop(), opts...)
}

// User creates a user named name with email name@example.com.
func User(t testing.TB, s *store.Store, name string) *models.User {
	t.Helper()

	u, err := s.CreateUser(context.Background(), fmt.Sprintf("%s@example.com", name), name, "not-a-real-hash")
	require.NoError(t, err)
	return u
}

// Team creates a team administered by admin together with its general channel.
func Team(t testing.TB, s *store.Store, name string, admin *models.User) (*models.Team, *models.Channel) {
	t.Helper()

	team := &models.Team{Name: name}
	general := &models.Channel{Name: models.DefaultChannelName, Public: true}
	err := s.WithTx(context.Background(), func(tx *store.Tx) error {
		if err := tx.InsertTeam(context.Background(), team); err != nil {
			return err
		}
		general.TeamID = team.ID
		if err := tx.InsertChannel(context.Background(), general); err != nil {
			return err
		}
		return tx.InsertMember(context.Background(), &models.Member{TeamID: team.ID, UserID: admin.ID, Admin: true})
	})
	require.NoError(t, err)
	return team, general
}

// Member adds u to team as a regular member.
func Member(t testing.TB, s *store.Store, team *models.Team, u *models.User) {
	t.Helper()

	require.NoError(t, s.InsertMember(context.Background(), &models.Member{TeamID: team.ID, UserID: u.ID}))
}

// Channel creates a channel in team. Private channels list members.
func Channel(t testing.TB, s *store.Store, team *models.Team, name string, public bool, members ...*models.User) *models.Channel {
	t.Helper()

	ch := &models.Channel{TeamID: team.ID, Name: name, Public: public}
	err := s.WithTx(context.Background(), func(tx *store.Tx) error {
		if err := tx.InsertChannel(context.Background(), ch); err != nil {
			return err
		}
		ids := make([]int64, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID)
		}
		return tx.InsertPrivateChannelMembers(context.Background(), ch.ID, ids)
	})
	require.NoError(t, err)
	return ch
}

// DirectMessage stores a direct message from sender to receiver.
func DirectMessage(t testing.TB, s *store.Store, team *models.Team, sender, receiver *models.User, text string) {
	t.Helper()

	require.NoError(t, s.InsertDirectMessage(context.Background(), &models.DirectMessage{
		TeamID:     team.ID,
		SenderID:   sender.ID,
		ReceiverID: receiver.ID,
		Text:       text,
	}))
}
