package inventory

import (
	"testing"

	"github.com/Veraticus/the-gilded-rose/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		item string
		want model.Category
	}{
		{name: "legendary exact name", item: "Sulfuras, Hand of Ragnaros", want: model.CategoryLegendary},
		{name: "legendary requires exact match", item: "Sulfuras", want: model.CategoryOrdinary},
		{name: "conjured prefix", item: "Conjured Mana Cake", want: model.CategoryConjured},
		{name: "conjured anywhere in name", item: "Freshly Conjured Bread", want: model.CategoryConjured},
		{name: "conjured is case sensitive", item: "conjured mana cake", want: model.CategoryOrdinary},
		{name: "conjured beats aged brie", item: "Conjured Aged Brie", want: model.CategoryConjured},
		{name: "aged brie", item: "Aged Brie", want: model.CategoryAgedBrie},
		{name: "aged brie requires exact match", item: "Aged Brie Wheel", want: model.CategoryOrdinary},
		{name: "backstage passes", item: "Backstage passes to a TAFKAL80ETC concert", want: model.CategoryBackstagePasses},
		{name: "other backstage passes are ordinary", item: "Backstage passes to a Metallica concert", want: model.CategoryOrdinary},
		{name: "ordinary", item: "Elixir of the Mongoose", want: model.CategoryOrdinary},
		{name: "empty name", item: "", want: model.CategoryOrdinary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.item))
		})
	}
}

func TestClassify_LegendarySetIsConsulted(t *testing.T) {
	LegendaryNames["Conjured Thunderfury"] = struct{}{}
	t.Cleanup(func() { delete(LegendaryNames, "Conjured Thunderfury") })

	assert.Equal(t, model.CategoryLegendary, Classify("Conjured Thunderfury"))
	assert.True(t, IsLegendary("Conjured Thunderfury"))
}
