package redis

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crewscore/core"
	"crewscore/engine"
)

// newTestClient spins up a miniredis server and returns a client plus cleanup.
func newTestClient(t *testing.T) (*redis.Client, func()) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cleanup := func() {
		_ = client.Close()
		mr.Close()
	}
	return client, cleanup
}

func TestStore_GetProfileFresh(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	p, err := store.GetProfile(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, core.UserID("ana"), p.UserID)
	assert.Equal(t, int64(0), p.Version)
	assert.NotNil(t, p.Counters)
}

func TestStore_CommitAndReload(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	ctx := context.Background()

	p, err := store.GetProfile(ctx, "ana")
	require.NoError(t, err)

	p.CMS = 25
	p.Counters[core.CounterReviews] = 1
	p.Badges["review_rookie_1"] = struct{}{}
	p.PerEntity[core.FamilyCityCheckins] = map[string]int64{"CLT": 1}
	p.LevelID = "rookie"
	p.Version = 1

	res := core.ProgressionResult{EventID: "e1", UserID: "ana", Points: 25, NewCMS: 25}
	require.NoError(t, store.CommitProgression(ctx, "e1", p, res))

	got, err := store.GetProfile(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, int64(25), got.CMS)
	assert.Equal(t, int64(1), got.Version)
	assert.True(t, got.HasBadge("review_rookie_1"))
	assert.Equal(t, int64(1), got.PerEntity[core.FamilyCityCheckins]["CLT"])

	stored, ok, err := store.LookupResult(ctx, "e1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, res.Points, stored.Points)
}

func TestStore_CommitDuplicateEvent(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	ctx := context.Background()

	p, _ := store.GetProfile(ctx, "ana")
	p.Version = 1
	require.NoError(t, store.CommitProgression(ctx, "e1", p, core.ProgressionResult{EventID: "e1"}))

	p2, _ := store.GetProfile(ctx, "ana")
	p2.Version = 2
	err := store.CommitProgression(ctx, "e1", p2, core.ProgressionResult{EventID: "e1"})
	assert.ErrorIs(t, err, engine.ErrDuplicateEvent)
}

func TestStore_CommitVersionConflict(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	ctx := context.Background()

	p, _ := store.GetProfile(ctx, "ana")
	p.Version = 1
	require.NoError(t, store.CommitProgression(ctx, "e1", p, core.ProgressionResult{}))

	// stale write built from the version-0 read
	stale := p
	stale.Version = 1
	err := store.CommitProgression(ctx, "e2", stale, core.ProgressionResult{})
	assert.ErrorIs(t, err, engine.ErrVersionConflict)
}

func TestStore_LookupResultMissing(t *testing.T) {
	client, cleanup := newTestClient(t)
	defer cleanup()

	store := NewWithClient(client)
	_, ok, err := store.LookupResult(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.False(t, ok)
}
