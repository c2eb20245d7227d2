package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"vidscribe/internal/notifications"
	"vidscribe/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var channel bool
	var notify bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify tools, credentials, and directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			scope := preflight.ScopeLocal
			if channel {
				scope = preflight.ScopeChannel
			}

			var rows [][]string
			ready := true
			for _, status := range preflight.CheckSystemDeps(cfg, scope) {
				state := "ok"
				detail := status.Path
				if !status.Available {
					detail = status.Detail
					if status.Optional {
						state = "optional"
					} else {
						state = "missing"
						ready = false
					}
				}
				rows = append(rows, []string{status.Name, state, detail})
			}
			for _, result := range preflight.RunAll(cfg, scope) {
				state := "ok"
				if !result.Passed {
					state = "failed"
					ready = false
				}
				rows = append(rows, []string{result.Name, state, result.Detail})
			}
			if notify {
				state, detail := "ok", cfg.Watch.NtfyTopic
				if detail == "" {
					state, detail = "failed", "watch.ntfy_topic is not set"
					ready = false
				} else if err := notifications.NewService(cfg).TestNotification(cmd.Context()); err != nil {
					state, detail = "failed", err.Error()
					ready = false
				}
				rows = append(rows, []string{"ntfy", state, detail})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Backend: %s\n", cfg.Transcription.Backend)
			fmt.Fprintln(out, renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
			if !ready {
				return errors.New("environment not ready")
			}
			fmt.Fprintln(out, "Environment ready")
			return nil
		},
	}
	cmd.Flags().BoolVar(&channel, "channel", false, "Include channel download requirements")
	cmd.Flags().BoolVar(&notify, "notify", false, "Send a test notification to watch.ntfy_topic")
	return cmd
}
