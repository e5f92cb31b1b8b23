package main

import (
	"fmt"

	"github.com/Veraticus/the-gilded-rose/internal/cli"
	"github.com/Veraticus/the-gilded-rose/internal/fixture"
	"github.com/Veraticus/the-gilded-rose/internal/model"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	var (
		days int
		file string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the daily inventory report",
		Long: `Print the state of an inventory for day 0 and after each following day.

The report runs in memory and never touches the database. Without --file the
standard shop inventory is used.`,
		Example: `  # Two days of the standard inventory
  rose report --days 2

  # A custom inventory
  rose report --file inventory.yaml --days 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if days < 0 {
				return fmt.Errorf("--days must not be negative")
			}

			var items []model.Item
			if file == "" {
				items = fixture.Default()
			} else {
				loaded, err := fixture.LoadFile(file)
				if err != nil {
					return err
				}
				items = loaded
			}

			return cli.WriteReport(cmd.OutOrStdout(), items, days)
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 2, "number of days to simulate")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML inventory file")

	return cmd
}
