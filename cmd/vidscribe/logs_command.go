package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"vidscribe/internal/logging"
	"vidscribe/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display the vidscribe log file",
		Long:  "Prints recent entries from the log file. Use --follow while a watch is running in another terminal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			out := cmd.OutOrStdout()

			var (
				initial []string
				offset  int64
			)
			if lines <= 0 {
				initial, offset, err = logs.ReadFrom(path, 0)
			} else {
				initial, offset, err = logs.Last(path, lines)
			}
			if err != nil {
				return err
			}
			for _, line := range initial {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(initial) == 0 {
					fmt.Fprintln(out, "No log entries available")
				}
				return nil
			}
			return logs.Follow(cmd.Context(), path, offset, logs.DefaultPollInterval, func(line string) {
				fmt.Fprintln(out, line)
			})
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 10, "Number of lines to show (0 for all)")
	return cmd
}
