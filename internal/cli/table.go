package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Veraticus/the-gilded-rose/internal/inventory"
	"github.com/Veraticus/the-gilded-rose/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// cellStyle separates columns; widths are measured on the visible text, so
// styled cells stay aligned.
var cellStyle = lipgloss.NewStyle().PaddingRight(2)

// NewTable returns a borderless table with styled headers.
func NewTable(headers ...string) *table.Table {
	styled := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = HeaderStyle.Render(h)
	}

	return table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		StyleFunc(func(_, _ int) lipgloss.Style { return cellStyle }).
		Headers(styled...)
}

// WriteTable renders t followed by a newline.
func WriteTable(w io.Writer, t *table.Table) error {
	_, err := fmt.Fprintln(w, t.String())
	return err
}

// WriteItemTable renders stored items as an aligned table with their category.
func WriteItemTable(w io.Writer, items []model.Item) error {
	t := NewTable("ID", "Name", "Category", "Sell In", "Quality")

	for _, item := range items {
		category := inventory.Classify(item.Name)
		name := item.Name
		if category == model.CategoryLegendary {
			name = LegendaryStyle.Render(name)
		}

		sellIn := strconv.Itoa(item.SellIn)
		if item.SellIn <= 0 {
			sellIn = WarningStyle.Render(sellIn)
		}

		t.Row(strconv.Itoa(item.ID), name, category.String(), sellIn, strconv.Itoa(item.Quality))
	}

	return WriteTable(w, t)
}

// WriteRunTable renders recorded day runs.
func WriteRunTable(w io.Writer, runs []model.DayRun) error {
	t := NewTable("Run", "Started", "Items", "Status", "Error")

	for _, run := range runs {
		status := SuccessStyle.Render("committed")
		if !run.Committed {
			status = ErrorStyle.Render("rolled back")
		}
		errText := run.Error
		if errText == "" {
			errText = SubtleStyle.Render("-")
		}

		t.Row(run.ID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%d/%d", run.Processed, run.Total),
			status,
			errText)
	}

	return WriteTable(w, t)
}
