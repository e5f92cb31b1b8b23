package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Veraticus/the-gilded-rose/internal/fixture"
	"github.com/Veraticus/the-gilded-rose/internal/inventory"
	"github.com/Veraticus/the-gilded-rose/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goldenTwoDays = `-------- day 0 --------
name, sellIn, quality
+5 Dexterity Vest, 10, 20
Aged Brie, 2, 0
Elixir of the Mongoose, 5, 7
Sulfuras, Hand of Ragnaros, 0, 80
Sulfuras, Hand of Ragnaros, -1, 80
Backstage passes to a TAFKAL80ETC concert, 15, 20
Backstage passes to a TAFKAL80ETC concert, 10, 49
Backstage passes to a TAFKAL80ETC concert, 5, 49
Conjured Mana Cake, 3, 6

-------- day 1 --------
name, sellIn, quality
+5 Dexterity Vest, 9, 19
Aged Brie, 1, 1
Elixir of the Mongoose, 4, 6
Sulfuras, Hand of Ragnaros, -1, 80
Sulfuras, Hand of Ragnaros, -2, 80
Backstage passes to a TAFKAL80ETC concert, 14, 21
Backstage passes to a TAFKAL80ETC concert, 9, 50
Backstage passes to a TAFKAL80ETC concert, 4, 50
Conjured Mana Cake, 2, 4

-------- day 2 --------
name, sellIn, quality
+5 Dexterity Vest, 8, 18
Aged Brie, 0, 2
Elixir of the Mongoose, 3, 5
Sulfuras, Hand of Ragnaros, -2, 80
Sulfuras, Hand of Ragnaros, -3, 80
Backstage passes to a TAFKAL80ETC concert, 13, 22
Backstage passes to a TAFKAL80ETC concert, 8, 50
Backstage passes to a TAFKAL80ETC concert, 3, 50
Conjured Mana Cake, 1, 2

`

func TestWriteReport_DefaultInventory(t *testing.T) {
	var buf bytes.Buffer
	items := fixture.Default()

	require.NoError(t, WriteReport(&buf, items, 2))
	assert.Equal(t, goldenTwoDays, buf.String())

	// Items are advanced in place.
	assert.Equal(t, "Aged Brie, 0, 2", items[1].String())
}

func TestWriteReport_ZeroDays(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, []model.Item{{Name: "Elixir", SellIn: 1, Quality: 1}}, 0))
	assert.Equal(t, "-------- day 0 --------\nname, sellIn, quality\nElixir, 1, 1\n\n", buf.String())
}

func TestWriteReport_StopsOnInvalidItem(t *testing.T) {
	var buf bytes.Buffer
	items := []model.Item{
		{Name: "Elixir", SellIn: 1, Quality: 1},
		{Name: "Cursed Gem", SellIn: 1, Quality: 51},
	}

	err := WriteReport(&buf, items, 3)
	require.ErrorIs(t, err, inventory.ErrQualityTooHigh)
	assert.Contains(t, err.Error(), "day 1")
	// The first item was advanced and emitted before the failure.
	assert.True(t, strings.HasSuffix(buf.String(), "-------- day 1 --------\nname, sellIn, quality\nElixir, 0, 0\n"))
}

func TestWriteItemTable(t *testing.T) {
	DisableColor()
	var buf bytes.Buffer
	items := []model.Item{
		{ID: 1, Name: "Aged Brie", SellIn: 2, Quality: 0},
		{ID: 2, Name: "Sulfuras, Hand of Ragnaros", SellIn: -1, Quality: 80},
	}

	require.NoError(t, WriteItemTable(&buf, items))
	out := buf.String()

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Category")
	assert.Contains(t, lines[1], "aged_brie")
	assert.Contains(t, lines[2], "legendary")
	assert.Contains(t, lines[2], "80")
}

// useTrueColor renders styled output for the rest of the test.
func useTrueColor(t *testing.T) {
	t.Helper()
	previous := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.TrueColor)
	t.Cleanup(func() { lipgloss.SetColorProfile(previous) })
}

// assertColumnsAligned checks that every column starts at the same offset on
// every visible line.
func assertColumnsAligned(t *testing.T, out string, columns [][]string) {
	t.Helper()
	lines := strings.Split(strings.TrimRight(ansi.Strip(out), "\n"), "\n")
	require.Len(t, lines, len(columns))

	for col := range columns[0] {
		want := strings.Index(lines[0], columns[0][col])
		require.GreaterOrEqual(t, want, 0, "header %q missing", columns[0][col])
		for row := 1; row < len(lines); row++ {
			assert.Equal(t, want, strings.Index(lines[row], columns[row][col]),
				"column %d misaligned on line %q", col, lines[row])
		}
	}
}

func TestWriteItemTable_AlignedWithColor(t *testing.T) {
	useTrueColor(t)
	var buf bytes.Buffer
	items := []model.Item{
		{ID: 1, Name: "Sulfuras, Hand of Ragnaros", SellIn: 0, Quality: 80},
		{ID: 2, Name: "Elixir of the Mongoose", SellIn: 5, Quality: 7},
	}

	require.NoError(t, WriteItemTable(&buf, items))
	assert.Contains(t, buf.String(), "\x1b[", "output should be styled")

	assertColumnsAligned(t, buf.String(), [][]string{
		{"ID", "Name", "Category", "Sell In", "Quality"},
		{"1", "Sulfuras, Hand of Ragnaros", "legendary", "0", "80"},
		{"2", "Elixir of the Mongoose", "ordinary", "5", "7"},
	})
}

func TestWriteRunTable_AlignedWithColor(t *testing.T) {
	useTrueColor(t)
	var buf bytes.Buffer
	runs := []model.DayRun{
		{ID: "run-b", StartedAt: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), Total: 3, Processed: 1, Error: "boom"},
		{ID: "run-a", StartedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), Total: 3, Processed: 3, Committed: true},
	}

	require.NoError(t, WriteRunTable(&buf, runs))

	assertColumnsAligned(t, buf.String(), [][]string{
		{"Run", "Started", "Items", "Status"},
		{"run-b", "2024-03-02 09:00:00", "1/3", "rolled back"},
		{"run-a", "2024-03-01 09:00:00", "3/3", "committed"},
	})
}

func TestWriteRunTable(t *testing.T) {
	DisableColor()
	var buf bytes.Buffer
	failedID := 2
	runs := []model.DayRun{
		{ID: "run-b", StartedAt: time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC), Total: 3, Processed: 1, FailedItemID: &failedID, Error: "Item quality cannot be more than 50"},
		{ID: "run-a", StartedAt: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), Total: 3, Processed: 3, Committed: true},
	}

	require.NoError(t, WriteRunTable(&buf, runs))
	out := buf.String()

	assert.Contains(t, out, "rolled back")
	assert.Contains(t, out, "1/3")
	assert.Contains(t, out, "committed")
	assert.Contains(t, out, "2024-03-01 09:00:00")
}
