// Package inventory advances stock by one simulated day at a time.
package inventory

import (
	"strings"

	"github.com/Veraticus/the-gilded-rose/internal/model"
)

// Quality bounds enforced for every non-legendary item.
const (
	MinQuality = 0
	MaxQuality = 50
)

// Names and markers that drive classification.
const (
	// ConjuredMarker is matched case-sensitively anywhere in the name.
	ConjuredMarker      = "Conjured"
	AgedBrieName        = "Aged Brie"
	BackstagePassesName = "Backstage passes to a TAFKAL80ETC concert"
	SulfurasName        = "Sulfuras, Hand of Ragnaros"
)

// LegendaryNames is the set of names classified as legendary.
var LegendaryNames = map[string]struct{}{
	SulfurasName: {},
}

// IsLegendary reports whether name is in the legendary set.
func IsLegendary(name string) bool {
	_, ok := LegendaryNames[name]
	return ok
}

// IsConjured reports whether name carries the conjured marker.
func IsConjured(name string) bool {
	return strings.Contains(name, ConjuredMarker)
}

// Classify resolves the category of an item from its name. The first match wins.
func Classify(name string) model.Category {
	switch {
	case IsLegendary(name):
		return model.CategoryLegendary
	case IsConjured(name):
		return model.CategoryConjured
	case name == AgedBrieName:
		return model.CategoryAgedBrie
	case name == BackstagePassesName:
		return model.CategoryBackstagePasses
	default:
		return model.CategoryOrdinary
	}
}
