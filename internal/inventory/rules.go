package inventory

import "github.com/Veraticus/the-gilded-rose/internal/model"

// rule computes the next quality of an item from its current sell-in and quality.
// Rules run before sell-in is decremented.
type rule func(sellIn, quality int) int

var rules = map[model.Category]rule{
	model.CategoryLegendary:       legendaryRule,
	model.CategoryConjured:        conjuredRule,
	model.CategoryAgedBrie:        agedBrieRule,
	model.CategoryBackstagePasses: backstagePassesRule,
	model.CategoryOrdinary:        ordinaryRule,
}

// NextQuality returns the quality an item of the given category has after one day.
func NextQuality(category model.Category, sellIn, quality int) int {
	r, ok := rules[category]
	if !ok {
		r = ordinaryRule
	}
	return r(sellIn, quality)
}

func legendaryRule(_, quality int) int {
	return quality
}

func ordinaryRule(sellIn, quality int) int {
	return decay(sellIn, quality, 1)
}

func conjuredRule(sellIn, quality int) int {
	return decay(sellIn, quality, 2)
}

// decay lowers quality by rate, doubled once the sell-by date has passed.
func decay(sellIn, quality, rate int) int {
	if quality == MinQuality {
		return quality
	}
	if sellIn <= 0 {
		rate *= 2
	}
	return clamp(quality - rate)
}

func agedBrieRule(sellIn, quality int) int {
	if quality == MaxQuality {
		return quality
	}
	if sellIn <= 0 {
		return clamp(quality + 2)
	}
	return clamp(quality + 1)
}

func backstagePassesRule(sellIn, quality int) int {
	switch {
	case sellIn < 0:
		return MinQuality
	case quality == MaxQuality:
		return quality
	case sellIn <= 5:
		return clamp(quality + 3)
	case sellIn <= 10:
		return clamp(quality + 2)
	default:
		return clamp(quality + 1)
	}
}

func clamp(quality int) int {
	if quality < MinQuality {
		return MinQuality
	}
	if quality > MaxQuality {
		return MaxQuality
	}
	return quality
}
