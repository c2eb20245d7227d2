package search

import (
	"time"

	"vidscribe/internal/fileutil"
)

// VideoInfo describes a downloaded video in channel search records.
type VideoInfo struct {
	Title    string  `json:"title"`
	URL      string  `json:"url"`
	Duration float64 `json:"duration,omitempty"`
}

// Record is the persisted search result for one video.
type Record struct {
	VideoFile string     `json:"video_file"`
	VideoInfo *VideoInfo `json:"video_info,omitempty"`
	Keywords  []string   `json:"keywords"`
	Timestamp string     `json:"timestamp,omitempty"`
	Matches   []Match    `json:"matches"`
}

// NewRecord builds a record, stamping it with the current time when stamp is
// true.
func NewRecord(videoFile string, keywords []string, matches []Match, stamp bool) Record {
	rec := Record{
		VideoFile: videoFile,
		Keywords:  append([]string(nil), keywords...),
		Matches:   matches,
	}
	if rec.Keywords == nil {
		rec.Keywords = []string{}
	}
	if rec.Matches == nil {
		rec.Matches = []Match{}
	}
	if stamp {
		rec.Timestamp = time.Now().Format(time.RFC3339)
	}
	return rec
}

// Save writes the record as indented JSON.
func (r Record) Save(path string) error {
	return fileutil.WriteJSON(path, r)
}
