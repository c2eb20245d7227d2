package pipeline

import (
	"errors"
	"path/filepath"

	"vidscribe/internal/search"
	"vidscribe/internal/transcript"
)

var errEmptyReference = errors.New("empty video reference")

// Layout decides where a unit's artifacts are written.
type Layout int

const (
	// LayoutAlongside writes next to the source video.
	LayoutAlongside Layout = iota
	// LayoutPerVideo writes into <output>/<stem>/.
	LayoutPerVideo
	// LayoutChannel writes into <output>/transcripts and <output>/search_results.
	LayoutChannel
	// LayoutFlat writes directly into <output>.
	LayoutFlat
)

// Channel layout subdirectories.
const (
	VideosDir        = "videos"
	TranscriptsDir   = "transcripts"
	SearchResultsDir = "search_results"
)

// Options configure a Runner.
type Options struct {
	Format        transcript.Format
	Keywords      []string
	ContextRadius int
	OutputDir     string
	Layout        Layout
	// StampSearch adds a timestamp to each search record.
	StampSearch bool
	// NoSearchFile counts matches without writing a search record.
	NoSearchFile bool
}

// DefaultOptions returns JSON transcripts with the default context radius.
func DefaultOptions() Options {
	return Options{
		Format:        transcript.FormatJSON,
		ContextRadius: search.DefaultContextWords,
	}
}

type artifactPaths struct {
	transcript string
	search     string
}

func (o Options) paths(mediaPath, stem string) artifactPaths {
	format := o.Format
	if format == "" {
		format = transcript.FormatJSON
	}
	layout := o.Layout
	if o.OutputDir == "" {
		layout = LayoutAlongside
	}
	switch layout {
	case LayoutPerVideo:
		dir := filepath.Join(o.OutputDir, stem)
		return artifactPaths{
			transcript: filepath.Join(dir, stem+"_transcript"+format.Extension()),
			search:     filepath.Join(dir, stem+"_search_results.json"),
		}
	case LayoutChannel:
		return artifactPaths{
			transcript: filepath.Join(o.OutputDir, TranscriptsDir, stem+"_transcript"+format.Extension()),
			search:     filepath.Join(o.OutputDir, SearchResultsDir, stem+"_search.json"),
		}
	case LayoutFlat:
		return artifactPaths{
			transcript: filepath.Join(o.OutputDir, stem+"_transcript"+format.Extension()),
			search:     filepath.Join(o.OutputDir, stem+"_search_results.json"),
		}
	default:
		dir := filepath.Dir(mediaPath)
		return artifactPaths{
			transcript: filepath.Join(dir, stem+"_transcript"+format.Extension()),
			search:     filepath.Join(dir, stem+"_search_results.json"),
		}
	}
}
