package inventory

import (
	"errors"
	"fmt"

	"github.com/Veraticus/the-gilded-rose/internal/model"
)

// Validation errors.
var (
	ErrQualityTooHigh  = errors.New("Item quality cannot be more than 50")
	ErrQualityNegative = errors.New("Item quality cannot be negative")
	ErrNilItem         = errors.New("item cannot be nil")
)

// QualityError reports the item that stopped a daily update.
type QualityError struct {
	Err   error
	Item  model.Item
	Index int
}

func (e *QualityError) Error() string {
	return fmt.Sprintf("item %d (%s): %v", e.Index, e.Item.Name, e.Err)
}

func (e *QualityError) Unwrap() error {
	return e.Err
}

// Validate checks the quality bounds of an item before it is advanced.
// Legendary items are exempt from the upper bound.
func Validate(item model.Item) error {
	if item.Quality > MaxQuality && !IsLegendary(item.Name) {
		return ErrQualityTooHigh
	}
	if item.Quality < MinQuality {
		return ErrQualityNegative
	}
	return nil
}
