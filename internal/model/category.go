package model

import "fmt"

// Category is the closed set of item kinds that decide how quality changes.
type Category int

const (
	// CategoryOrdinary is any item that matches no other category.
	CategoryOrdinary Category = iota
	// CategoryLegendary items never change quality and ignore the upper bound.
	CategoryLegendary
	// CategoryConjured items decay twice as fast as ordinary ones.
	CategoryConjured
	// CategoryAgedBrie gains quality as it ages.
	CategoryAgedBrie
	// CategoryBackstagePasses gain quality towards the concert and are worthless after it.
	CategoryBackstagePasses
)

var categoryNames = map[Category]string{
	CategoryOrdinary:        "ordinary",
	CategoryLegendary:       "legendary",
	CategoryConjured:        "conjured",
	CategoryAgedBrie:        "aged_brie",
	CategoryBackstagePasses: "backstage_passes",
}

// Categories lists every category in classification priority order, with the fallback last.
func Categories() []Category {
	return []Category{
		CategoryLegendary,
		CategoryConjured,
		CategoryAgedBrie,
		CategoryBackstagePasses,
		CategoryOrdinary,
	}
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory returns the category with the given name.
func ParseCategory(name string) (Category, error) {
	for c, n := range categoryNames {
		if n == name {
			return c, nil
		}
	}
	return CategoryOrdinary, fmt.Errorf("unknown category %q", name)
}
