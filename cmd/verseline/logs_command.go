package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"verseline/internal/logging"
	"verseline/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lineCount int
		follow    bool
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show daemon log output",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			client, err := ctx.daemonClient()
			if err != nil {
				return err
			}
			if client != nil {
				if err := streamViaDaemon(cmd.Context(), client, out, lineCount, follow); err == nil {
					return nil
				}
				// Daemon offline; read the shared log file directly.
			}

			path := logging.FilePath(cfg.Paths.LogDir)
			if path == "" {
				return fmt.Errorf("file logging is disabled; set paths.log_dir")
			}
			return streamFromFile(cmd.Context(), path, out, lineCount, follow)
		},
	}

	cmd.Flags().IntVarP(&lineCount, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep streaming new lines")
	return cmd
}

func streamViaDaemon(ctx context.Context, client *daemonAPI, out io.Writer, lineCount int, follow bool) error {
	resp, err := client.Logs(ctx, -1, lineCount, false)
	if err != nil {
		return err
	}
	for _, line := range resp.Lines {
		fmt.Fprintln(out, line)
	}
	offset := resp.Offset
	for follow {
		resp, err = client.Logs(ctx, offset, 0, true)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		for _, line := range resp.Lines {
			fmt.Fprintln(out, line)
		}
		offset = resp.Offset
	}
	return nil
}

func streamFromFile(ctx context.Context, path string, out io.Writer, lineCount int, follow bool) error {
	result, err := logs.Tail(ctx, path, logs.Options{Offset: -1, Limit: lineCount})
	if err != nil {
		return err
	}
	for _, line := range result.Lines {
		fmt.Fprintln(out, line)
	}
	offset := result.Offset
	for follow {
		result, err = logs.Tail(ctx, path, logs.Options{Offset: offset, Follow: true, Wait: 5 * time.Second})
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		for _, line := range result.Lines {
			fmt.Fprintln(out, line)
		}
		offset = result.Offset
	}
	return nil
}
