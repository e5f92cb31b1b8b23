// Package fixture loads and writes inventories as YAML and provides the
// default inventory used for the daily report.
package fixture

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Veraticus/the-gilded-rose/internal/model"
	"gopkg.in/yaml.v3"
)

// ErrEmptyInventory is returned when a file contains no items.
var ErrEmptyInventory = errors.New("inventory file contains no items")

// Document is the on-disk shape of an inventory file.
type Document struct {
	Items []model.Item `yaml:"items"`
}

// Default returns a fresh copy of the standard shop inventory.
func Default() []model.Item {
	return []model.Item{
		{Name: "+5 Dexterity Vest", SellIn: 10, Quality: 20},
		{Name: "Aged Brie", SellIn: 2, Quality: 0},
		{Name: "Elixir of the Mongoose", SellIn: 5, Quality: 7},
		{Name: "Sulfuras, Hand of Ragnaros", SellIn: 0, Quality: 80},
		{Name: "Sulfuras, Hand of Ragnaros", SellIn: -1, Quality: 80},
		{Name: "Backstage passes to a TAFKAL80ETC concert", SellIn: 15, Quality: 20},
		{Name: "Backstage passes to a TAFKAL80ETC concert", SellIn: 10, Quality: 49},
		{Name: "Backstage passes to a TAFKAL80ETC concert", SellIn: 5, Quality: 49},
		{Name: "Conjured Mana Cake", SellIn: 3, Quality: 6},
	}
}

// Load decodes an inventory document from r.
func Load(r io.Reader) ([]model.Item, error) {
	var doc Document
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyInventory
		}
		return nil, fmt.Errorf("failed to decode inventory: %w", err)
	}

	if len(doc.Items) == 0 {
		return nil, ErrEmptyInventory
	}
	for i, item := range doc.Items {
		if item.Name == "" {
			return nil, fmt.Errorf("item at index %d: missing name", i)
		}
	}

	return doc.Items, nil
}

// LoadFile reads an inventory document from path.
func LoadFile(path string) ([]model.Item, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the operator
	if err != nil {
		return nil, fmt.Errorf("failed to open inventory file: %w", err)
	}
	defer func() { _ = f.Close() }()

	items, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// Write encodes items as an inventory document.
func Write(w io.Writer, items []model.Item) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(Document{Items: items}); err != nil {
		return fmt.Errorf("failed to encode inventory: %w", err)
	}
	return enc.Close()
}
