package pipeline

import (
	"context"
	"strings"

	"vidscribe/internal/search"
)

// Unit is one video to process.
type Unit struct {
	// Reference identifies the unit in outcomes: a path or a URL.
	Reference string
	Title     string
	// Stem names the output artifacts; empty derives it from the resolved file.
	Stem string
	// VideoInfo is attached to search records when set.
	VideoInfo *search.VideoInfo
	// Resolve produces the local media path. Nil means Reference is a path.
	Resolve func(ctx context.Context) (string, error)
}

// LocalUnit wraps a file already on disk.
func LocalUnit(path string) Unit {
	return Unit{Reference: path}
}

func (u Unit) resolve(ctx context.Context) (string, error) {
	if u.Resolve != nil {
		return u.Resolve(ctx)
	}
	if strings.TrimSpace(u.Reference) == "" {
		return "", errEmptyReference
	}
	return u.Reference, nil
}

// Label returns the title when known, otherwise the reference.
func (u Unit) Label() string {
	if strings.TrimSpace(u.Title) != "" {
		return u.Title
	}
	return u.Reference
}
