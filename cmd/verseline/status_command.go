package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"verseline/internal/config"
	"verseline/internal/deps"
	"verseline/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(out, line)
				}

				client, err := ctx.daemonClient()
				if err != nil {
					return err
				}
				health, healthErr := client.Health(cmd.Context())
				switch {
				case healthErr != nil:
					fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "not reachable", colorize))
				case health.Running:
					detail := fmt.Sprintf("running, %d workers", health.Workers)
					kind := statusOK
					if health.Status != "ok" {
						kind = statusWarn
						detail += " (degraded)"
					}
					fmt.Fprintln(out, renderStatusLine("Daemon", kind, detail, colorize))
					for _, check := range health.Stages {
						kind := statusOK
						detail := "ready"
						if !check.Ready {
							kind = statusError
							detail = check.Detail
						}
						fmt.Fprintln(out, renderStatusLine("Stage "+check.Name, kind, detail, colorize))
					}
				default:
					fmt.Fprintln(out, renderStatusLine("Daemon", statusWarn, "workflow stopped", colorize))
				}

				for _, line := range renderSectionHeader("Dependencies", colorize) {
					fmt.Fprintln(out, line)
				}
				for _, status := range deps.CheckBinaries(deps.Required(cfg)) {
					kind := statusOK
					detail := status.Command
					if !status.Available {
						detail = status.Detail
						if status.Optional {
							kind = statusWarn
						} else {
							kind = statusError
						}
					}
					fmt.Fprintln(out, renderStatusLine(status.Name, kind, detail, colorize))
				}

				for _, line := range renderSectionHeader("Queue", colorize) {
					fmt.Fprintln(out, line)
				}
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				statuses := make([]string, 0, len(stats))
				for status := range stats {
					statuses = append(statuses, string(status))
				}
				sort.Strings(statuses)
				total := 0
				for _, status := range statuses {
					count := stats[queue.Status(status)]
					total += count
					fmt.Fprintln(out, renderStatusLine(status, statusInfo, fmt.Sprintf("%d", count), colorize))
				}
				fmt.Fprintln(out, renderStatusLine("total", statusInfo, fmt.Sprintf("%d", total), colorize))
				return nil
			})
		},
	}
}
