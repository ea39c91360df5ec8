package storage

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GD-alt/hoofd/pkg/state"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	store := NewRedisStore(mr.Addr(), "", 0, logger)
	return store, mr
}

func testState() *state.GameState {
	gs := state.NewGameState()
	gs.CurrentScene = "pray"
	gs.PreviousScene = "first"
	gs.Inventory = []string{"Money", "Money", "Sword"}
	gs.Modifiers = []string{"blessed"}
	gs.Variables = map[string]any{"title": "Sir"}
	gs.History = []string{"first"}
	return gs
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	gs := testState()

	require.NoError(t, store.SaveSnapshot(ctx, "slot1", gs))

	loaded, err := store.LoadSnapshot(ctx, "slot1")
	require.NoError(t, err)
	require.NotNil(t, loaded)

	assert.Equal(t, gs.ID, loaded.ID)
	assert.Equal(t, "pray", loaded.CurrentScene)
	assert.Equal(t, "first", loaded.PreviousScene)
	assert.Equal(t, []string{"Money", "Money", "Sword"}, loaded.Inventory)
	assert.Equal(t, map[string]int{"Money": 2, "Sword": 1}, loaded.InventoryCounts())
	assert.Equal(t, []string{"first"}, loaded.History)
}

func TestRedisStore_LoadEmptySlot(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = store.Close() }()

	_, err := store.LoadSnapshot(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNoSnapshot), "expected ErrNoSnapshot, got %v", err)
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.SaveSnapshot(ctx, "slot1", testState()))
	require.NoError(t, store.DeleteSnapshot(ctx, "slot1"))

	_, err := store.LoadSnapshot(ctx, "slot1")
	assert.True(t, errors.Is(err, ErrNoSnapshot))

	// Deleting an already-empty slot is fine.
	assert.NoError(t, store.DeleteSnapshot(ctx, "slot1"))
}

func TestRedisStore_SlotsAreIndependent(t *testing.T) {
	store, mr := setupTestRedis(t)
	defer mr.Close()
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	a := testState()
	b := testState()
	b.CurrentScene = "game_over"

	require.NoError(t, store.SaveSnapshot(ctx, "a", a))
	require.NoError(t, store.SaveSnapshot(ctx, "b", b))

	la, err := store.LoadSnapshot(ctx, "a")
	require.NoError(t, err)
	lb, err := store.LoadSnapshot(ctx, "b")
	require.NoError(t, err)

	assert.Equal(t, "pray", la.CurrentScene)
	assert.Equal(t, "game_over", lb.CurrentScene)
}
