package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vidscribe/internal/media/ffprobe"
	"vidscribe/internal/selection"
	"vidscribe/internal/textutil"
)

// VideoExtensions lists the file extensions treated as videos, lower-cased.
var VideoExtensions = []string{".mp4", ".avi", ".mov", ".mkv", ".wmv", ".flv", ".webm", ".m4v"}

// IsVideo reports whether path has a video extension (case-insensitive).
func IsVideo(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range VideoExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// Discover returns the video files in dir, sorted by path. Subdirectories are
// searched only when recursive is set.
func Discover(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var found []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if IsVideo(path) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}

// Prober inspects a local media file.
type Prober func(ctx context.Context, path string) (ffprobe.Result, error)

// FFprobe returns a Prober backed by the given ffprobe binary.
func FFprobe(binary string) Prober {
	return func(ctx context.Context, path string) (ffprobe.Result, error) {
		return ffprobe.Inspect(ctx, binary, path)
	}
}

// LocalCandidates describes local files for selection.Filter. The upload date
// is the container creation date when present, otherwise the modification
// date. Files the prober cannot read keep an unknown duration.
func LocalCandidates(ctx context.Context, paths []string, probe Prober) []selection.Candidate {
	out := make([]selection.Candidate, 0, len(paths))
	for _, path := range paths {
		c := selection.Candidate{
			ID:    path,
			Title: textutil.Stem(path),
			URL:   path,
		}
		if info, err := os.Stat(path); err == nil {
			c.UploadDate = info.ModTime().Format("20060102")
		}
		if probe != nil {
			if result, err := probe(ctx, path); err == nil {
				if d, ok := result.Duration(); ok {
					c.Duration = &d
				}
				if date := result.CreationDate(); date != "" {
					c.UploadDate = date
				}
			}
		}
		out = append(out, c)
	}
	return out
}

// LocalUnits converts selected local candidates into units.
func LocalUnits(candidates []selection.Candidate) []Unit {
	units := make([]Unit, 0, len(candidates))
	for _, c := range candidates {
		units = append(units, Unit{Reference: c.ID, Title: c.Title})
	}
	return units
}
