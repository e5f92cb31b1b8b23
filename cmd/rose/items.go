package main

import (
	"fmt"
	"os"

	"github.com/Veraticus/the-gilded-rose/internal/cli"
	"github.com/Veraticus/the-gilded-rose/internal/fixture"
	"github.com/Veraticus/the-gilded-rose/internal/inventory"
	"github.com/Veraticus/the-gilded-rose/internal/model"
	"github.com/spf13/cobra"
)

func itemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage the stored inventory",
		Long:  `List, add, remove, import and export the items kept in the inventory database.`,
	}

	cmd.AddCommand(listItemsCmd())
	cmd.AddCommand(addItemCmd())
	cmd.AddCommand(removeItemCmd())
	cmd.AddCommand(clearItemsCmd())
	cmd.AddCommand(importItemsCmd())
	cmd.AddCommand(exportItemsCmd())
	cmd.AddCommand(itemHistoryCmd())

	return cmd
}

func listItemsCmd() *cobra.Command {
	var categoryName string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var filter *model.Category
			if categoryName != "" {
				category, err := model.ParseCategory(categoryName)
				if err != nil {
					return err
				}
				filter = &category
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			items, err := store.GetItems(ctx)
			if err != nil {
				return fmt.Errorf("failed to get items: %w", err)
			}
			if filter != nil {
				items = filterByCategory(items, *filter)
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No items found. Use 'rose items add' or 'rose items import' to stock the shop."))
				return nil
			}

			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%s Inventory (%d items)", cli.RoseIcon, len(items))))
			return cli.WriteItemTable(out, items)
		},
	}

	cmd.Flags().StringVarP(&categoryName, "category", "c", "", "only list items of this category (e.g. aged_brie)")

	return cmd
}

func filterByCategory(items []model.Item, category model.Category) []model.Item {
	filtered := items[:0]
	for _, item := range items {
		if inventory.Classify(item.Name) == category {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

func addItemCmd() *cobra.Command {
	var (
		sellIn  int
		quality int
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new item",
		Long: `Add an item to the inventory. Quality must be between 0 and 50,
except for legendary items which may exceed 50.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			item := model.NewItem(args[0], sellIn, quality)

			if err := inventory.Validate(*item); err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SaveItem(ctx, item); err != nil {
				return fmt.Errorf("failed to save item: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %q as %s (ID: %d)",
				item.Name, inventory.Classify(item.Name), item.ID)))
			return nil
		},
	}

	cmd.Flags().IntVar(&sellIn, "sell-in", 0, "days left to sell the item")
	cmd.Flags().IntVar(&quality, "quality", 0, "current quality of the item")
	_ = cmd.MarkFlagRequired("sell-in")
	_ = cmd.MarkFlagRequired("quality")

	return cmd
}

func removeItemCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.DeleteItem(ctx, id); err != nil {
				return fmt.Errorf("failed to remove item: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Removed item %d", id)))
			return nil
		},
	}
}

func clearItemsCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear the inventory without --yes")
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.DeleteAllItems(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Removed %d items", removed)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm removing every item")

	return cmd
}

func importItemsCmd() *cobra.Command {
	var (
		replace     bool
		useDefaults bool
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import items from a YAML file",
		Example: `  # Append items from a file
  rose items import inventory.yaml

  # Replace the inventory with the standard shop stock
  rose items import --defaults --replace`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var items []model.Item
			switch {
			case useDefaults && len(args) == 0:
				items = fixture.Default()
			case !useDefaults && len(args) == 1:
				loaded, err := fixture.LoadFile(args[0])
				if err != nil {
					return err
				}
				items = loaded
			default:
				return fmt.Errorf("specify either a file or --defaults")
			}

			for i, item := range items {
				if err := inventory.Validate(item); err != nil {
					return fmt.Errorf("item %d (%s): %w", i, item.Name, err)
				}
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.ImportItems(ctx, items, replace)
			if err != nil {
				return fmt.Errorf("failed to import items: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Imported %d items", n)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&replace, "replace", false, "replace the current inventory instead of appending")
	cmd.Flags().BoolVar(&useDefaults, "defaults", false, "import the standard shop inventory")

	return cmd
}

func exportItemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export items as YAML",
		Long:  `Write the stored inventory as YAML to a file, or to stdout when no file is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			items, err := store.GetItems(ctx)
			if err != nil {
				return fmt.Errorf("failed to get items: %w", err)
			}

			if len(args) == 0 {
				return fixture.Write(cmd.OutOrStdout(), items)
			}

			f, err := os.Create(args[0])
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			if err := fixture.Write(f, items); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to close export file: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d items to %s", len(items), args[0])))
			return nil
		},
	}
}

func itemHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show the recorded daily states of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			item, err := store.GetItem(ctx, id)
			if err != nil {
				return err
			}
			history, err := store.ItemHistory(ctx, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, cli.FormatTitle(item.Name))
			if len(history) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No days recorded yet."))
				return nil
			}
			for _, snap := range history {
				fmt.Fprintf(out, "%s  %s  sell_in=%d quality=%d\n",
					snap.RecordedAt.Format("2006-01-02 15:04:05"),
					cli.SubtleStyle.Render(snap.RunID),
					snap.SellIn, snap.Quality)
			}
			return nil
		},
	}
}
