package pipeline

import (
	"context"
	"sync"

	"vidscribe/internal/transcript"
)

// Transcriber turns a local media file into a word-aligned transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, mediaPath string) (*transcript.Transcript, error)
}

// Loader prepares a Transcriber. Loading may be expensive (model downloads,
// client construction) so the runner calls it at most once per run.
type Loader interface {
	Load(ctx context.Context) (Transcriber, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (Transcriber, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) (Transcriber, error) {
	return f(ctx)
}

// Static returns a Loader that always yields t.
func Static(t Transcriber) Loader {
	return LoaderFunc(func(context.Context) (Transcriber, error) {
		return t, nil
	})
}

// lazyEngine memoizes the first Load result, error included.
type lazyEngine struct {
	loader Loader
	once   sync.Once
	engine Transcriber
	err    error
}

func (l *lazyEngine) get(ctx context.Context) (Transcriber, error) {
	l.once.Do(func() {
		l.engine, l.err = l.loader.Load(ctx)
	})
	return l.engine, l.err
}
