// Package progress provides Progress implementations for the console.
package progress

import (
	"io"

	"github.com/ideamans/go-l10n"
	"github.com/schollz/progressbar/v3"

	"github.com/user/framedump/pkg/ports"
)

// Bar renders extraction progress as a terminal progress bar.
type Bar struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

// NewBar creates a Bar that draws to w, normally os.Stderr.
func NewBar(w io.Writer) *Bar {
	return &Bar{w: w}
}

// Start implements ports.Progress.
// An unknown total renders as a spinner with a running count.
func (b *Bar) Start(total int) {
	limit := total
	if limit <= 0 {
		limit = -1
	}
	b.bar = progressbar.NewOptions(limit,
		progressbar.OptionSetDescription(l10n.T("Extracting")),
		progressbar.OptionSetWriter(b.w),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// Advance implements ports.Progress.
func (b *Bar) Advance() {
	if b.bar == nil {
		return
	}
	_ = b.bar.Add(1)
}

// Finish implements ports.Progress.
func (b *Bar) Finish() {
	if b.bar == nil {
		return
	}
	_ = b.bar.Finish()
	b.bar = nil
}

var _ ports.Progress = (*Bar)(nil)
