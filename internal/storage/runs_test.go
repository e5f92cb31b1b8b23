package storage

import (
	"context"
	"testing"

	"github.com/Veraticus/the-gilded-rose/internal/common"
	"github.com/Veraticus/the-gilded-rose/internal/inventory"
	"github.com/Veraticus/the-gilded-rose/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteStorage_AdvanceDays(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	saved := seedItems(t, store,
		model.Item{Name: "Elixir of the Mongoose", SellIn: 1, Quality: 7},
		model.Item{Name: "Sulfuras, Hand of Ragnaros", SellIn: 0, Quality: 80},
		model.Item{Name: "Backstage passes to a TAFKAL80ETC concert", SellIn: 11, Quality: 20},
	)

	var seenDays []int
	runs, err := store.AdvanceDays(ctx, inventory.NewDailyUpdater(nil), 2, func(day int, run model.DayRun) {
		seenDays = append(seenDays, day)
		assert.True(t, run.Committed)
	})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, []int{1, 2}, seenDays)
	assert.NotEqual(t, runs[0].ID, runs[1].ID)
	assert.Equal(t, 3, runs[0].Processed)
	assert.Equal(t, 3, runs[0].Total)

	items, err := store.GetItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Elixir of the Mongoose, -1, 4", items[0].String())
	assert.Equal(t, "Sulfuras, Hand of Ragnaros, -2, 80", items[1].String())
	assert.Equal(t, "Backstage passes to a TAFKAL80ETC concert, 9, 23", items[2].String())

	history, err := store.ItemHistory(ctx, saved[0].ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, runs[0].ID, history[0].RunID)
	assert.Equal(t, 6, history[0].Quality)
	assert.Equal(t, 4, history[1].Quality)
}

func TestSQLiteStorage_AdvanceDaysRollsBackFailedDay(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	saved := seedItems(t, store,
		model.Item{Name: "Elixir", SellIn: 10, Quality: 20},
		model.Item{Name: "Cursed Gem", SellIn: 10, Quality: 60},
		model.Item{Name: "Aged Brie", SellIn: 10, Quality: 20},
	)

	runs, err := store.AdvanceDays(ctx, inventory.NewDailyUpdater(nil), 3, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, inventory.ErrQualityTooHigh)
	assert.Contains(t, err.Error(), "day 1")

	require.Len(t, runs, 1)
	failed := runs[0]
	assert.False(t, failed.Committed)
	assert.Equal(t, 1, failed.Processed)
	require.NotNil(t, failed.FailedItemID)
	assert.Equal(t, saved[1].ID, *failed.FailedItemID)

	// Nothing from the failed day is persisted, including the item processed before the failure.
	items, err := store.GetItems(ctx)
	require.NoError(t, err)
	for i, item := range items {
		assert.Equal(t, saved[i].SellIn, item.SellIn, item.Name)
		assert.Equal(t, saved[i].Quality, item.Quality, item.Name)
	}

	history, err := store.ItemHistory(ctx, saved[0].ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	recorded, err := store.GetRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recorded, 1)
	assert.Equal(t, failed.ID, recorded[0].ID)
	assert.False(t, recorded[0].Committed)
	assert.Contains(t, recorded[0].Error, "Item quality cannot be more than 50")
	require.NotNil(t, recorded[0].FailedItemID)
	assert.Equal(t, saved[1].ID, *recorded[0].FailedItemID)
}

func TestSQLiteStorage_AdvanceDaysValidation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.AdvanceDays(ctx, inventory.NewDailyUpdater(nil), 0, nil)
	assert.ErrorIs(t, err, ErrInvalidDays)

	_, err = store.AdvanceDays(ctx, nil, 1, nil)
	assert.ErrorIs(t, err, ErrNilParameter)

	_, err = store.AdvanceDays(ctx, inventory.NewDailyUpdater(nil), 1, nil)
	assert.ErrorIs(t, err, common.ErrNoItems)
}

func TestSQLiteStorage_AdvanceDaysCanceled(t *testing.T) {
	store := createTestStorage(t)
	seedItems(t, store, model.Item{Name: "Elixir", SellIn: 10, Quality: 20})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runs, err := store.AdvanceDays(ctx, inventory.NewDailyUpdater(nil), 5, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, runs)
}

func TestSQLiteStorage_GetRuns(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	seedItems(t, store, model.Item{Name: "Elixir", SellIn: 10, Quality: 20})

	runs, err := store.AdvanceDays(ctx, inventory.NewDailyUpdater(nil), 3, nil)
	require.NoError(t, err)

	latest, err := store.GetRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, runs[2].ID, latest[0].ID)
	assert.Equal(t, runs[1].ID, latest[1].ID)
	assert.Nil(t, latest[0].FailedItemID)

	all, err := store.GetRuns(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
