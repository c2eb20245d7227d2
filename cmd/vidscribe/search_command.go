package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"vidscribe/internal/config"
	"vidscribe/internal/search"
	"vidscribe/internal/transcript"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var keywords []string
	var keywordsFile string
	var radius int
	var save bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "search <transcript.json>",
		Short: "Search an existing JSON transcript for keywords",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			tr, err := transcript.Load(path)
			if err != nil {
				return err
			}
			kws, err := resolveKeywords(cfg, keywords, keywordsFile)
			if err != nil {
				return err
			}
			if len(kws) == 0 {
				return fmt.Errorf("no keywords given (use --search or --keywords-file)")
			}

			matches := search.Search(tr, kws, contextRadius(cfg, radius, cmd.Flags().Changed("context")))
			if jsonOut {
				return writeJSON(cmd, search.NewRecord(path, kws, matches, false))
			}
			out := cmd.OutOrStdout()
			printMatches(out, kws, matches)
			if save && len(matches) > 0 {
				target := searchResultsPath(path)
				if err := search.NewRecord(path, kws, matches, true).Save(target); err != nil {
					return err
				}
				fmt.Fprintf(out, "Search results saved to %s\n", target)
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&keywords, "search", "s", nil, "Keyword to search for (repeatable)")
	cmd.Flags().StringVar(&keywordsFile, "keywords-file", "", "YAML file listing keywords")
	cmd.Flags().IntVarP(&radius, "context", "C", 5, "Words of context on each side of a match")
	cmd.Flags().BoolVar(&save, "save", false, "Write matches next to the transcript")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print matches as JSON")
	return cmd
}

// searchResultsPath maps talk_transcript.json to talk_search_results.json.
func searchResultsPath(transcriptPath string) string {
	dir := filepath.Dir(transcriptPath)
	base := strings.TrimSuffix(filepath.Base(transcriptPath), filepath.Ext(transcriptPath))
	base = strings.TrimSuffix(base, "_transcript")
	return filepath.Join(dir, base+"_search_results.json")
}
