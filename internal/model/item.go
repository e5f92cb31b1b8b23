// Package model defines the core data structures for the rose application.
package model

import (
	"fmt"
	"time"
)

// Item is a single line of stock whose quality and sell-in evolve once per day.
type Item struct {
	CreatedAt time.Time `json:"created_at" yaml:"-"`
	UpdatedAt time.Time `json:"updated_at" yaml:"-"`
	Name      string    `json:"name" yaml:"name"`
	ID        int       `json:"id" yaml:"-"`
	SellIn    int       `json:"sell_in" yaml:"sell_in"`
	Quality   int       `json:"quality" yaml:"quality"`
}

// NewItem creates an item that has not been persisted yet.
func NewItem(name string, sellIn, quality int) *Item {
	return &Item{
		Name:    name,
		SellIn:  sellIn,
		Quality: quality,
	}
}

// String renders the item as "<name>, <sell_in>, <quality>".
func (i Item) String() string {
	return fmt.Sprintf("%s, %d, %d", i.Name, i.SellIn, i.Quality)
}

// Pointers returns pointers into items so they can be advanced in place.
func Pointers(items []Item) []*Item {
	ptrs := make([]*Item, len(items))
	for i := range items {
		ptrs[i] = &items[i]
	}
	return ptrs
}
