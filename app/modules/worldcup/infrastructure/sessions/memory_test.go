package worldcupsessions

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	worldcupdomain "github.com/Black-And-White-Club/topbun-worldcup/app/modules/worldcup/domain"
)

func newState(t *testing.T) *worldcupdomain.TournamentState {
	t.Helper()
	pool := []worldcupdomain.Competitor{
		{ID: 1, Name: "Whopper", Rating: 1500},
		{ID: 2, Name: "Big Mac", Rating: 1500},
		{ID: 3, Name: "Cy Burger", Rating: 1500},
		{ID: 4, Name: "ShackBurger", Rating: 1500},
	}
	state, err := worldcupdomain.NewTournament(pool, 4, worldcupdomain.IdentityShuffler)
	require.NoError(t, err)
	return state
}

func TestMemoryStore_SaveLoadDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	state := newState(t)

	require.NoError(t, store.Save(ctx, "abc", state))

	loaded, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(state, loaded))

	// The loaded value is independent of what was saved.
	loaded.CurrentMatch = 1
	again, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, 0, again.CurrentMatch)

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = store.Load(ctx, "abc")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_Missing(t *testing.T) {
	_, err := NewMemoryStore(0).Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, "k", newState(t)))
	assert.Equal(t, 1, store.Len())

	now = now.Add(59 * time.Second)
	_, err := store.Load(ctx, "k")
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = store.Load(ctx, "k")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, store.Len())
}

func TestMemoryStore_RejectsCorruptState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(0)
	state := newState(t)
	state.CurrentMatch = 7

	require.NoError(t, store.Save(ctx, "bad", state))

	_, err := store.Load(ctx, "bad")
	assert.ErrorIs(t, err, worldcupdomain.ErrCorruptState)
}

func TestMemoryStore_CompareAndSave(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(time.Hour)
	state := newState(t)

	next, err := state.Advance(1)
	require.NoError(t, err)

	err = store.CompareAndSave(ctx, "abc", state.Version, next)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, "abc", state))
	require.NoError(t, store.CompareAndSave(ctx, "abc", state.Version, next))

	// A second writer that read the same version loses.
	stale, err := state.Advance(2)
	require.NoError(t, err)
	err = store.CompareAndSave(ctx, "abc", state.Version, stale)
	assert.ErrorIs(t, err, ErrSessionConflict)

	loaded, err := store.Load(ctx, "abc")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(next, loaded))
}

func TestMemoryStore_SweepsOnlyPastThreshold(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(time.Minute)
	store.now = func() time.Time { return now }
	state := newState(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Save(ctx, fmt.Sprintf("small-%d", i), state))
	}
	now = now.Add(2 * time.Minute)
	require.NoError(t, store.Save(ctx, "fresh", state))
	assert.Len(t, store.entries, 4, "expired entries stay until the map grows")

	for i := 0; i < sweepThreshold; i++ {
		require.NoError(t, store.Save(ctx, fmt.Sprintf("bulk-%d", i), state))
	}
	now = now.Add(2 * time.Minute)
	require.NoError(t, store.Save(ctx, "last", state))
	assert.Len(t, store.entries, 1)
}
