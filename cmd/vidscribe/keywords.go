package main

import (
	"strings"

	"vidscribe/internal/config"
	"vidscribe/internal/search"
)

// resolveKeywords merges --search values with a keywords file. When neither
// is given the configured defaults apply.
func resolveKeywords(cfg *config.Config, flags []string, file string) ([]string, error) {
	var fromFile []string
	if path := strings.TrimSpace(file); path != "" {
		expanded, err := config.ExpandPath(path)
		if err != nil {
			return nil, err
		}
		fromFile, err = search.LoadKeywords(expanded)
		if err != nil {
			return nil, err
		}
	}
	if len(search.NormalizeKeywords(flags)) == 0 && len(fromFile) == 0 {
		return search.NormalizeKeywords(cfg.Search.Keywords), nil
	}
	return search.MergeKeywords(flags, fromFile), nil
}

// contextRadius picks the --context value when set, else the configured one.
func contextRadius(cfg *config.Config, flag int, changed bool) int {
	if changed {
		if flag < 0 {
			return 0
		}
		return flag
	}
	return cfg.Search.ContextWords
}
