package sweeper_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/db/dbtest"
	"github.com/dmitrymomot/mvc/pkg/entity"
	"github.com/dmitrymomot/mvc/pkg/sweeper"
)

func TestParseSchedule(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{"@every 10m", "@hourly", "0 */6 * * *"} {
		_, err := sweeper.ParseSchedule(expr)
		require.NoError(t, err, expr)
	}

	_, err := sweeper.ParseSchedule("not a cron expression")
	require.ErrorIs(t, err, sweeper.ErrInvalidSchedule)

	_, err = sweeper.New(nil, "")
	require.ErrorIs(t, err, sweeper.ErrInvalidSchedule)
}

func TestSweep(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	d := dbtest.Open(t)
	reg := db.NewRegistry(map[string]*db.Database{db.DefaultName: d})
	t.Cleanup(func() { _ = reg.Close(ctx) })
	gw := reg.Default()

	uid, err := entity.NewUsers(gw).Create(ctx, entity.User{Username: "alice", Password: "x", PermissionsID: 2})
	require.NoError(t, err)

	now := time.Unix(1_700_000_000, 0)
	maxTime := int64(1209600)
	sessions := entity.NewSessions(gw)
	expired, err := sessions.Create(ctx, entity.Session{UserID: uid, Hash: "a", LastActive: now.Unix() - maxTime})
	require.NoError(t, err)
	live, err := sessions.Create(ctx, entity.Session{UserID: uid, Hash: "b", LastActive: now.Unix() - maxTime + 1})
	require.NoError(t, err)

	s, err := sweeper.New(d, "@every 1h", sweeper.WithClock(func() time.Time { return now }))
	require.NoError(t, err)

	n, err := s.Sweep(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = sessions.ByID(ctx, expired)
	require.ErrorIs(t, err, db.ErrNoRows)
	_, err = sessions.ByID(ctx, live)
	require.NoError(t, err)
}

func TestStartStop(t *testing.T) {
	t.Parallel()

	s, err := sweeper.New(dbtest.Open(t), "@every 1h")
	require.NoError(t, err)

	require.NoError(t, s.StartFunc()(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Shutdown()(ctx))
}
