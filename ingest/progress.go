package ingest

import (
	"os"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// ProgressReporter receives bulk-load progress callbacks.
type ProgressReporter interface {
	Start(total int)
	Increment(delta int)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int)     {}
func (nopProgress) Increment(int) {}
func (nopProgress) Finish()       {}

// BarProgress renders a terminal progress bar during bulk loads.
type BarProgress struct {
	enabled bool
	bar     *progressbar.ProgressBar
}

// NewBarProgress creates a terminal progress reporter. When enabled is
// false every callback is a no-op, so callers can gate on TTY detection
// without branching.
func NewBarProgress(enabled bool) *BarProgress {
	return &BarProgress{enabled: enabled}
}

// DefaultProgressEnabled reports whether stderr is a terminal.
func DefaultProgressEnabled() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (p *BarProgress) Start(total int) {
	if !p.enabled || total <= 0 {
		return
	}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("indexing"),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (p *BarProgress) Increment(delta int) {
	if p.bar == nil {
		return
	}
	_ = p.bar.Add(delta)
}

func (p *BarProgress) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}
