// Package progress draws a guard-by-guard progress bar on stderr.
package progress

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/silenceobjects/sentinel/internal/domain"
	"golang.org/x/term"
)

// New returns a bar on stderr when enabled and stderr is a terminal outside
// CI, otherwise a no-op.
func New(enabled bool) domain.Progress {
	if enabled && IsInteractive() {
		return NewBar(os.Stderr)
	}
	return NoOp{}
}

// IsInteractive reports whether stderr is a terminal and no CI marker is set.
func IsInteractive() bool {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// Bar implements domain.Progress with progressbar.
type Bar struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func NewBar(w io.Writer) *Bar {
	return &Bar{w: w}
}

func (b *Bar) Start(total int) {
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(18),
		progressbar.OptionSetDescription("guards"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (b *Bar) Step(description string) {
	if b.bar == nil {
		return
	}
	b.bar.Describe(description)
	_ = b.bar.Add(1)
}

func (b *Bar) Finish() {
	if b.bar == nil {
		return
	}
	_ = b.bar.Finish()
}

// NoOp implements domain.Progress with no output.
type NoOp struct{}

func (NoOp) Start(int)   {}
func (NoOp) Step(string) {}
func (NoOp) Finish()     {}
