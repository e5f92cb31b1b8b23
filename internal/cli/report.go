package cli

import (
	"fmt"
	"io"

	"github.com/Veraticus/the-gilded-rose/internal/inventory"
	"github.com/Veraticus/the-gilded-rose/internal/model"
)

// ReportHeader is the column header printed under every day banner.
const ReportHeader = "name, sellIn, quality"

func writeDayBanner(w io.Writer, day int) error {
	_, err := fmt.Fprintf(w, "-------- day %d --------\n%s\n", day, ReportHeader)
	return err
}

// WriteDay writes the report section for a single day from the current item state.
func WriteDay(w io.Writer, day int, items []model.Item) error {
	if err := writeDayBanner(w, day); err != nil {
		return err
	}
	for _, item := range items {
		if _, err := fmt.Fprintln(w, item.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}

// WriteReport writes the day 0 state of items, then advances them in place
// once per day and writes each day's section. The item lines of every
// advanced day come from the updater's sink as items are updated.
func WriteReport(w io.Writer, items []model.Item, days int) error {
	if err := WriteDay(w, 0, items); err != nil {
		return err
	}

	ptrs := model.Pointers(items)
	updater := inventory.NewDailyUpdater(inventory.NewWriterSink(w))

	for day := 1; day <= days; day++ {
		if err := writeDayBanner(w, day); err != nil {
			return err
		}
		if _, err := updater.AdvanceOneDay(ptrs); err != nil {
			return fmt.Errorf("day %d: %w", day, err)
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	return nil
}
