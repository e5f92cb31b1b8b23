package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Veraticus/the-gilded-rose/internal/cli"
	"github.com/Veraticus/the-gilded-rose/internal/common"
	"github.com/Veraticus/the-gilded-rose/internal/inventory"
	"github.com/Veraticus/the-gilded-rose/internal/model"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func advanceCmd() *cobra.Command {
	var (
		days       int
		quiet      bool
		checkpoint bool
	)

	cmd := &cobra.Command{
		Use:   "advance",
		Short: "Advance the stored inventory by one or more days",
		Long: `Advance every stored item by one day per requested day.

Each day is applied atomically: if any item fails validation, the whole day
is rolled back and recorded as a failed run. Days completed before the
failure stay applied. Use --checkpoint to snapshot the database first so the
whole advance can be undone with 'rose checkpoint restore'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if days <= 0 {
				return fmt.Errorf("--days must be positive")
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if checkpoint {
				manager, err := store.NewCheckpointManager()
				if err != nil {
					return fmt.Errorf("failed to create checkpoint manager: %w", err)
				}
				meta, err := manager.AutoCheckpoint(ctx, "advance")
				if err != nil {
					return err
				}
				if !quiet {
					fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Created checkpoint %s", meta.ID)))
				}
			}

			interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Advance")
			ctx, stop := interrupts.HandleInterrupts(ctx)
			defer stop()

			// Item lines are held until their day commits.
			var lines []string
			var sink inventory.Sink = inventory.NopSink{}
			if !quiet && days == 1 {
				sink = inventory.SinkFunc(func(line string) {
					lines = append(lines, line)
				})
			}

			var bar *progressbar.ProgressBar
			if days > 1 && !quiet {
				bar = newDayProgressBar(out, days)
			}

			runs, err := store.AdvanceDays(ctx, inventory.NewDailyUpdater(sink), days, func(day int, run model.DayRun) {
				slog.Debug("Day advanced", "day", day, "run_id", run.ID, "items", run.Processed)
				if len(lines) > 0 {
					lineSink := inventory.NewWriterSink(out)
					for _, line := range lines {
						lineSink.ItemAdvanced(line)
					}
					lines = lines[:0]
				}
				if bar != nil {
					if barErr := bar.Add(1); barErr != nil {
						slog.Warn("Failed to update progress bar", "error", barErr)
					}
				}
			})
			if err != nil {
				if errors.Is(err, common.ErrNoItems) {
					fmt.Fprintln(out, cli.FormatInfo("No items to advance."))
					return nil
				}
				common.LogError(err, "Advance stopped", common.Fields{
					"requested": days,
					"committed": committedDays(runs),
				})
				return common.NewUserError(fmt.Sprintf("Advanced %d of %d days", committedDays(runs), days), err)
			}

			common.LogInfo("Advance finished", common.Fields{
				"days":  days,
				"items": runs[len(runs)-1].Processed,
			})

			if !quiet {
				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Advanced %d items by %d days", runs[len(runs)-1].Processed, days)))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 1, "number of days to advance")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress item lines and progress output")
	cmd.Flags().BoolVar(&checkpoint, "checkpoint", false, "snapshot the database before advancing")

	return cmd
}

func newDayProgressBar(w io.Writer, days int) *progressbar.ProgressBar {
	return progressbar.NewOptions(days,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Advancing days...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(w); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
}

func committedDays(runs []model.DayRun) int {
	n := 0
	for _, run := range runs {
		if run.Committed {
			n++
		}
	}
	return n
}
