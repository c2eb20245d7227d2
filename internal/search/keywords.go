package search

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// keywordFile accepts either a bare YAML sequence or a mapping with a
// keywords key.
type keywordFile struct {
	Keywords []string `yaml:"keywords"`
}

// LoadKeywords reads a YAML keyword list.
func LoadKeywords(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keywords: %w", err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse keywords %s: %w", path, err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}

	var list []string
	root := node.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&list); err != nil {
			return nil, fmt.Errorf("parse keywords %s: %w", path, err)
		}
	case yaml.MappingNode:
		var file keywordFile
		if err := root.Decode(&file); err != nil {
			return nil, fmt.Errorf("parse keywords %s: %w", path, err)
		}
		list = file.Keywords
	default:
		return nil, fmt.Errorf("parse keywords %s: expected a list or a keywords mapping", path)
	}
	return NormalizeKeywords(list), nil
}

// NormalizeKeywords trims whitespace and drops blanks while preserving order.
func NormalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// MergeKeywords appends extra keywords to base, skipping exact duplicates.
func MergeKeywords(base []string, extra ...[]string) []string {
	seen := make(map[string]struct{}, len(base))
	out := make([]string, 0, len(base))
	add := func(list []string) {
		for _, kw := range NormalizeKeywords(list) {
			if _, ok := seen[kw]; ok {
				continue
			}
			seen[kw] = struct{}{}
			out = append(out, kw)
		}
	}
	add(base)
	for _, list := range extra {
		add(list)
	}
	return out
}
