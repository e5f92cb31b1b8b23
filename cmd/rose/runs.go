package main

import (
	"fmt"

	"github.com/Veraticus/the-gilded-rose/internal/cli"
	"github.com/spf13/cobra"
)

func runsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded day runs",
		Long:  `List the most recent attempts to advance the stored inventory, including rolled back days.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.GetRuns(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to get runs: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No days have been advanced yet."))
				return nil
			}

			return cli.WriteRunTable(out, runs)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to show (0 for all)")

	return cmd
}
