package inventory

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/the-gilded-rose/internal/model"
)

// Sink receives the textual form of each item right after it has been advanced.
type Sink interface {
	ItemAdvanced(line string)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(line string)

// ItemAdvanced calls f(line).
func (f SinkFunc) ItemAdvanced(line string) {
	f(line)
}

// NopSink discards every line.
type NopSink struct{}

// ItemAdvanced does nothing.
func (NopSink) ItemAdvanced(string) {}

// WriterSink writes one line per advanced item to an io.Writer.
type WriterSink struct {
	w io.Writer
}

// NewWriterSink creates a sink backed by w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// ItemAdvanced writes line followed by a newline.
func (s *WriterSink) ItemAdvanced(line string) {
	if _, err := fmt.Fprintln(s.w, line); err != nil {
		slog.Warn("Failed to write item line", "error", err)
	}
}

// Report describes what a single pass over the inventory did.
type Report struct {
	ByCategory map[model.Category]int
	// Processed is the number of items advanced before the pass returned.
	// On failure the items before the failing index have already been mutated.
	Processed int
}

// Complete reports whether every item of a batch of size n was advanced.
func (r Report) Complete(n int) bool {
	return r.Processed == n
}

// DailyUpdater advances items by one day.
type DailyUpdater struct {
	sink Sink
}

// NewDailyUpdater creates an updater that notifies sink after each item.
// A nil sink discards notifications.
func NewDailyUpdater(sink Sink) *DailyUpdater {
	if sink == nil {
		sink = NopSink{}
	}
	return &DailyUpdater{sink: sink}
}

// AdvanceOneDay updates every item in place, in order. It stops at the first
// item that fails validation and returns a *QualityError; items before it
// stay advanced and the failing item is left untouched.
func (u *DailyUpdater) AdvanceOneDay(items []*model.Item) (Report, error) {
	report := Report{ByCategory: make(map[model.Category]int)}

	for i, item := range items {
		if item == nil {
			return report, &QualityError{Index: i, Err: ErrNilItem}
		}
		if err := Validate(*item); err != nil {
			return report, &QualityError{Index: i, Item: *item, Err: err}
		}

		category := Classify(item.Name)
		before := *item
		item.Quality = NextQuality(category, item.SellIn, item.Quality)
		item.SellIn--

		slog.Debug("Advanced item",
			"name", item.Name,
			"category", category.String(),
			"sell_in", before.SellIn,
			"quality_before", before.Quality,
			"quality_after", item.Quality)

		report.Processed++
		report.ByCategory[category]++
		u.sink.ItemAdvanced(item.String())
	}

	return report, nil
}

// AdvanceDays runs AdvanceOneDay days times. It stops at the first failing day
// and returns the number of days fully completed.
func (u *DailyUpdater) AdvanceDays(items []*model.Item, days int) (int, error) {
	for day := 0; day < days; day++ {
		if _, err := u.AdvanceOneDay(items); err != nil {
			return day, fmt.Errorf("day %d: %w", day+1, err)
		}
	}
	return days, nil
}

// Advance is a pure variant of AdvanceOneDay: it returns updated copies and
// leaves the input untouched. On failure it returns nil.
func Advance(items []model.Item) ([]model.Item, error) {
	next := make([]model.Item, len(items))
	copy(next, items)

	if _, err := NewDailyUpdater(nil).AdvanceOneDay(model.Pointers(next)); err != nil {
		return nil, err
	}
	return next, nil
}
