package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"vidscribe/internal/pipeline"
)

// barProgress draws a terminal progress bar for interactive runs.
type barProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func (p *barProgress) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("starting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionFullWidth(),
		progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(p.out, "\n") }),
	)
}

func (p *barProgress) Begin(_ int, unit pipeline.Unit) {
	if p.bar != nil {
		p.bar.Describe(truncateLabel(unit.Label(), 40))
	}
}

func (p *barProgress) Done(int, pipeline.Outcome) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *barProgress) Finish(*pipeline.BatchResult) {
	if p.bar != nil && !p.bar.IsFinished() {
		_ = p.bar.Finish()
	}
}

// newProgress picks a bar on terminals and structured log lines otherwise.
func newProgress(out io.Writer, logger *slog.Logger) pipeline.Progress {
	if isTerminal(out) {
		return &barProgress{out: out}
	}
	return &pipeline.LogProgress{Logger: logger}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func truncateLabel(label string, limit int) string {
	runes := []rune(label)
	if len(runes) <= limit {
		return label
	}
	return string(runes[:limit-1]) + "…"
}
