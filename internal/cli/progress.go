package cli

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressBar wraps a progressbar so a nil bar is a no-op
type progressBar struct {
	bar *progressbar.ProgressBar
}

func newProgressBar(w io.Writer, total int) *progressBar {
	return &progressBar{
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription("Fetching events"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		),
	}
}

// Increment advances the bar by one finished event
func (p *progressBar) Increment() {
	if p == nil {
		return
	}
	_ = p.bar.Add(1)
}

// Finish completes and clears the bar
func (p *progressBar) Finish() {
	if p == nil {
		return
	}
	_ = p.bar.Finish()
}
