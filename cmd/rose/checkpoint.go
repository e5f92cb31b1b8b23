package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/the-gilded-rose/internal/cli"
	"github.com/Veraticus/the-gilded-rose/internal/storage"
	"github.com/spf13/cobra"
)

func checkpointCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoint",
		Short: "Manage database checkpoints",
		Long: `Create, list, restore, and delete database checkpoints.

Checkpoints snapshot the whole inventory database, including day runs and item
history, so a batch of advanced days can be undone.`,
		Example: `  # Snapshot before a long advance
  rose checkpoint create --tag before-week

  # List all checkpoints
  rose checkpoint list

  # Go back to the snapshot
  rose checkpoint restore before-week`,
	}

	cmd.AddCommand(createCheckpointCmd())
	cmd.AddCommand(listCheckpointsCmd())
	cmd.AddCommand(restoreCheckpointCmd())
	cmd.AddCommand(deleteCheckpointCmd())

	return cmd
}

// withCheckpoints opens storage and a checkpoint manager for the duration of fn.
func withCheckpoints(cmd *cobra.Command, fn func(*storage.CheckpointManager) error) error {
	store, err := initStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer store.Close()

	manager, err := store.NewCheckpointManager()
	if err != nil {
		return fmt.Errorf("failed to create checkpoint manager: %w", err)
	}

	return fn(manager)
}

func createCheckpointCmd() *cobra.Command {
	var (
		tag         string
		description string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new checkpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCheckpoints(cmd, func(manager *storage.CheckpointManager) error {
				meta, err := manager.Create(cmd.Context(), tag, description)
				if err != nil {
					return fmt.Errorf("failed to create checkpoint: %w", err)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s Created checkpoint %s (%s, %d items)\n",
					cli.SuccessStyle.Render(cli.SuccessIcon),
					cli.InfoStyle.Render(meta.ID),
					formatFileSize(meta.FileSize),
					meta.Items)
				if meta.Description != "" {
					fmt.Fprintf(out, "  Description: %s\n", meta.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "checkpoint tag (generated if not provided)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "description of the checkpoint")

	return cmd
}

func listCheckpointsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all checkpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withCheckpoints(cmd, func(manager *storage.CheckpointManager) error {
				checkpoints, err := manager.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list checkpoints: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(checkpoints) == 0 {
					fmt.Fprintln(out, cli.FormatInfo("No checkpoints found."))
					return nil
				}

				t := cli.NewTable("NAME", "CREATED", "SIZE", "ITEMS", "RUNS", "TYPE")
				for _, cp := range checkpoints {
					typeLabel := "manual"
					if cp.IsAuto {
						typeLabel = "auto"
					}
					t.Row(cli.InfoStyle.Render(cp.ID),
						cp.CreatedAt.Format(time.DateTime),
						formatFileSize(cp.FileSize),
						strconv.Itoa(cp.Items),
						strconv.Itoa(cp.DayRuns),
						cli.SubtleStyle.Render(typeLabel))
				}

				return cli.WriteTable(out, t)
			})
		},
	}
}

func restoreCheckpointCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <checkpoint-id>",
		Short: "Restore the database from a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			return withCheckpoints(cmd, func(manager *storage.CheckpointManager) error {
				ctx := cmd.Context()
				out := cmd.OutOrStdout()

				meta, err := manager.Get(ctx, id)
				if err != nil {
					return fmt.Errorf("failed to get checkpoint info: %w", err)
				}

				if !force {
					fmt.Fprintf(out, "%s This will replace the inventory with checkpoint %s.\n",
						cli.WarningStyle.Render(cli.WarningIcon),
						cli.InfoStyle.Render(id))
					fmt.Fprintf(out, "  Created: %s\n", meta.CreatedAt.Format(time.DateTime))
					if meta.Description != "" {
						fmt.Fprintf(out, "  Description: %s\n", meta.Description)
					}
					fmt.Fprint(out, "\nContinue? (y/N) ")

					response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
					if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(response)), "y") {
						fmt.Fprintln(out, cli.FormatInfo("Restore cancelled."))
						return nil
					}
				}

				if err := manager.Restore(ctx, id); err != nil {
					return fmt.Errorf("failed to restore checkpoint: %w", err)
				}

				fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Restored from checkpoint %s", id)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")

	return cmd
}

func deleteCheckpointCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <checkpoint-id>",
		Short: "Delete a checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withCheckpoints(cmd, func(manager *storage.CheckpointManager) error {
				if err := manager.Delete(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to delete checkpoint: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted checkpoint %s", args[0])))
				return nil
			})
		},
	}
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
