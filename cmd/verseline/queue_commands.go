package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"verseline/internal/config"
	"verseline/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the work queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueShowCommand(ctx))
	queueCmd.AddCommand(newQueueRetryCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	var statusFilters []string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				var statuses []queue.Status
				for _, value := range statusFilters {
					status, ok := queue.ParseStatus(value)
					if !ok {
						return fmt.Errorf("unknown status: %s", value)
					}
					statuses = append(statuses, status)
				}

				items, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					progress := fmt.Sprintf("%.0f%%", item.ProgressPercent)
					detail := item.ProgressMessage
					if item.ErrorMessage != "" {
						detail = item.ErrorMessage
					}
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						shortID(item.VideoID),
						item.Theme,
						string(item.Status),
						progress,
						truncate(detail, 48),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Video", "Theme", "Status", "Progress", "Detail"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVar(&statusFilters, "status", nil, "Filter by status (repeatable)")
	return cmd
}

func newQueueShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id|video-id>",
		Short: "Show one queue item in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				item, err := lookupItem(cmd, store, args[0])
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("no queue item matches %q", args[0])
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Item #%d (%s)\n", item.ID, item.VideoID)
				fmt.Fprintf(out, "  Theme:      %s\n", item.Theme)
				fmt.Fprintf(out, "  Status:     %s\n", item.Status)
				if item.AnimationMode != "" {
					fmt.Fprintf(out, "  Animation:  %s\n", item.AnimationMode)
				}
				if item.ProgressStage != "" {
					fmt.Fprintf(out, "  Progress:   %s (%.0f%%) %s\n", item.ProgressStage, item.ProgressPercent, item.ProgressMessage)
				}
				if item.BackgroundFile != "" {
					fmt.Fprintf(out, "  Background: %s\n", item.BackgroundFile)
				}
				if item.MusicFile != "" {
					fmt.Fprintf(out, "  Music:      %s\n", item.MusicFile)
				}
				if item.NarrationFile != "" {
					fmt.Fprintf(out, "  Narration:  %s (%.1fs)\n", item.NarrationFile, item.NarrationSeconds)
				}
				if item.OutputFile != "" {
					fmt.Fprintf(out, "  Output:     %s (%.1fs)\n", item.OutputFile, item.RealizedDuration)
				}
				if item.PublishedURL != "" {
					fmt.Fprintf(out, "  Published:  %s\n", item.PublishedURL)
				}
				if item.ErrorMessage != "" {
					fmt.Fprintf(out, "  Error:      %s\n", item.ErrorMessage)
				}
				if item.NeedsReview {
					fmt.Fprintf(out, "  Review:     %s\n", item.ReviewReason)
				}
				return nil
			})
		},
	}
}

func newQueueRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry [id...]",
		Short: "Reset failed items back to pending",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				ids := make([]int64, 0, len(args))
				for _, arg := range args {
					id, err := strconv.ParseInt(arg, 10, 64)
					if err != nil {
						return fmt.Errorf("invalid item id %q", arg)
					}
					ids = append(ids, id)
				}
				updated, err := store.RetryFailed(cmd.Context(), ids...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d item(s)\n", updated)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	var completedOnly bool
	var failedOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				var removed int64
				var err error
				switch {
				case completedOnly:
					removed, err = store.ClearCompleted(cmd.Context())
				case failedOnly:
					removed, err = store.ClearFailed(cmd.Context())
				default:
					removed, err = store.Clear(cmd.Context())
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d item(s)\n", removed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&completedOnly, "completed", false, "Remove only completed items")
	cmd.Flags().BoolVar(&failedOnly, "failed", false, "Remove only failed items")
	return cmd
}

func lookupItem(cmd *cobra.Command, store *queue.Store, key string) (*queue.Item, error) {
	if id, err := strconv.ParseInt(key, 10, 64); err == nil {
		return store.GetByID(cmd.Context(), id)
	}
	return store.GetByVideoID(cmd.Context(), key)
}

func shortID(videoID string) string {
	if len(videoID) > 8 {
		return videoID[:8]
	}
	return videoID
}

func truncate(value string, max int) string {
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
