package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/the-gilded-rose/internal/inventory"
	"github.com/Veraticus/the-gilded-rose/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCheckpointManager(t *testing.T) (*SQLiteStorage, *CheckpointManager) {
	t.Helper()
	store := createTestStorage(t)
	seedItems(t, store,
		*model.NewItem("Aged Brie", 2, 0),
		*model.NewItem("Elixir of the Mongoose", 5, 7),
	)

	manager, err := store.NewCheckpointManager()
	require.NoError(t, err)
	return store, manager
}

func TestCheckpointManager_Create(t *testing.T) {
	ctx := context.Background()
	_, manager := createTestCheckpointManager(t)

	t.Run("with tag", func(t *testing.T) {
		meta, err := manager.Create(ctx, "before-restock", "prior to restock")
		require.NoError(t, err)

		assert.Equal(t, "before-restock", meta.ID)
		assert.Equal(t, "prior to restock", meta.Description)
		assert.Equal(t, 2, meta.Items)
		assert.Equal(t, 0, meta.DayRuns)
		assert.Equal(t, ExpectedSchemaVersion, meta.SchemaVersion)
		assert.Positive(t, meta.FileSize)
		assert.False(t, meta.IsAuto)

		assert.FileExists(t, filepath.Join(manager.Dir(), "before-restock.db"))
		assert.FileExists(t, filepath.Join(manager.Dir(), "before-restock.meta.json"))
	})

	t.Run("generated tag", func(t *testing.T) {
		meta, err := manager.Create(ctx, "", "")
		require.NoError(t, err)
		assert.Contains(t, meta.ID, "checkpoint-")
	})

	t.Run("duplicate tag", func(t *testing.T) {
		_, err := manager.Create(ctx, "before-restock", "")
		assert.ErrorIs(t, err, ErrCheckpointExists)
	})

	t.Run("path traversal", func(t *testing.T) {
		for _, tag := range []string{"../escape", "a/b", `a\b`} {
			_, err := manager.Create(ctx, tag, "")
			assert.ErrorIs(t, err, ErrInvalidCheckpointTag, tag)
		}
	})
}

func TestCheckpointManager_MemoryUnsupported(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.NewCheckpointManager()
	assert.ErrorIs(t, err, ErrCheckpointUnsupported)
}

func TestCheckpointManager_List(t *testing.T) {
	ctx := context.Background()
	_, manager := createTestCheckpointManager(t)

	_, err := manager.Create(ctx, "first", "")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = manager.Create(ctx, "second", "")
	require.NoError(t, err)

	// Stray files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(manager.Dir(), "broken.meta.json"), []byte("{"), 0o600))

	checkpoints, err := manager.List(ctx)
	require.NoError(t, err)
	require.Len(t, checkpoints, 2)
	assert.Equal(t, "second", checkpoints[0].ID)
	assert.Equal(t, "first", checkpoints[1].ID)
}

func TestCheckpointManager_Restore(t *testing.T) {
	ctx := context.Background()
	store, manager := createTestCheckpointManager(t)

	_, err := manager.Create(ctx, "fresh", "")
	require.NoError(t, err)

	_, err = store.AdvanceDays(ctx, inventory.NewDailyUpdater(nil), 3, nil)
	require.NoError(t, err)

	items, err := store.GetItems(ctx)
	require.NoError(t, err)
	require.Equal(t, -1, items[0].SellIn)

	require.NoError(t, manager.Restore(ctx, "fresh"))

	// The storage keeps working on the restored file.
	items, err = store.GetItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 2, items[0].SellIn)
	assert.Equal(t, 5, items[1].SellIn)

	runs, err := store.GetRuns(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)

	t.Run("missing checkpoint", func(t *testing.T) {
		assert.ErrorIs(t, manager.Restore(ctx, "nope"), ErrCheckpointNotFound)
	})

	t.Run("corrupted checkpoint", func(t *testing.T) {
		_, err := manager.Create(ctx, "damaged", "")
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(manager.Dir(), "damaged.db"), []byte("not a database"), 0o600))

		assert.ErrorIs(t, manager.Restore(ctx, "damaged"), ErrCheckpointCorrupted)

		items, err := store.GetItems(ctx)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})
}

func TestCheckpointManager_Delete(t *testing.T) {
	ctx := context.Background()
	_, manager := createTestCheckpointManager(t)

	_, err := manager.Create(ctx, "doomed", "")
	require.NoError(t, err)

	require.NoError(t, manager.Delete(ctx, "doomed"))
	assert.NoFileExists(t, filepath.Join(manager.Dir(), "doomed.db"))
	assert.NoFileExists(t, filepath.Join(manager.Dir(), "doomed.meta.json"))

	assert.ErrorIs(t, manager.Delete(ctx, "doomed"), ErrCheckpointNotFound)

	_, err = manager.Get(ctx, "doomed")
	assert.ErrorIs(t, err, ErrCheckpointNotFound)
}

func TestCheckpointManager_AutoCheckpoint(t *testing.T) {
	ctx := context.Background()
	_, manager := createTestCheckpointManager(t)

	_, err := manager.Create(ctx, "manual", "")
	require.NoError(t, err)

	for i := 0; i < maxAutoCheckpoints+2; i++ {
		meta, err := manager.AutoCheckpoint(ctx, "advance")
		require.NoError(t, err)
		assert.True(t, meta.IsAuto)
		assert.Contains(t, meta.ID, "auto-advance-")
		time.Sleep(5 * time.Millisecond)
	}

	checkpoints, err := manager.List(ctx)
	require.NoError(t, err)

	auto := 0
	manual := 0
	for _, cp := range checkpoints {
		if cp.IsAuto {
			auto++
		} else {
			manual++
		}
	}
	assert.Equal(t, maxAutoCheckpoints, auto)
	assert.Equal(t, 1, manual)
}
