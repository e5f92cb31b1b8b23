package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/the-gilded-rose/internal/inventory"
	"github.com/spf13/cobra"
)

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <name>",
		Short: "Show which category an item name falls into",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			_, err := fmt.Fprintln(cmd.OutOrStdout(), inventory.Classify(name))
			return err
		},
	}
}
