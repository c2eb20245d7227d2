package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"vidscribe/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOut {
				if runs == nil {
					runs = []history.Run{}
				}
				return writeJSON(cmd, runs)
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					shortID(run.ID),
					string(run.Kind),
					run.Source,
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					formatDuration(run.Duration()),
					strconv.Itoa(run.Processed),
					strconv.Itoa(run.Failed),
					strconv.Itoa(run.TotalMatches),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Kind", "Source", "Started", "Took", "OK", "Failed", "Matches"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print runs as JSON")

	cmd.AddCommand(newHistoryShowCommand(ctx))
	cmd.AddCommand(newHistoryPruneCommand(ctx))
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the videos of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if run == nil {
				return fmt.Errorf("run %s not found", args[0])
			}
			videos, err := store.RunVideos(cmd.Context(), run.ID)
			if err != nil {
				return err
			}
			if jsonOut {
				if videos == nil {
					videos = []history.Video{}
				}
				return writeJSON(cmd, struct {
					Run    history.Run     `json:"run"`
					Videos []history.Video `json:"videos"`
				}{*run, videos})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run:         %s\n", run.ID)
			fmt.Fprintf(out, "Kind:        %s\n", run.Kind)
			if run.Source != "" {
				fmt.Fprintf(out, "Source:      %s\n", run.Source)
			}
			fmt.Fprintf(out, "Started:     %s\n", run.StartedAt.Local().Format(time.RFC3339))
			fmt.Fprintf(out, "Interrupted: %s\n", yesNo(run.Interrupted))
			if run.SummaryPath != "" {
				fmt.Fprintf(out, "Summary:     %s\n", run.SummaryPath)
			}
			rows := make([][]string, 0, len(videos))
			for _, v := range videos {
				label := v.Title
				if label == "" {
					label = v.Reference
				}
				detail := v.TranscriptPath
				if !v.Success {
					detail = v.Error
					if v.ErrorCategory != "" {
						detail = "[" + v.ErrorCategory + "] " + v.Error
					}
				}
				rows = append(rows, []string{truncateLabel(label, 50), yesNo(v.Success), strconv.Itoa(v.MatchCount), detail})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable([]string{"Video", "OK", "Matches", "Output"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run as JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete runs older than a cutoff",
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			store, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer store.Close()

			removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d run(s)\n", removed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 90*24*time.Hour, "Age beyond which runs are deleted")
	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	return d.Round(time.Second).String()
}
