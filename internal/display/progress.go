package display

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/schollz/progressbar/v3"
)

// progressScale gives the bar tenth-of-a-percent resolution.
const progressScale = 10

// Progress renders encode progress. On a terminal it draws a bar; otherwise
// it prints a line at every 10% step so logs stay readable.
type Progress struct {
	w           io.Writer
	bar         *progressbar.ProgressBar
	lastStep    int
	description string
}

// NewProgress creates a progress display writing to w. interactive selects
// the animated bar.
func NewProgress(w io.Writer, description string, interactive, color bool) *Progress {
	p := &Progress{w: w, description: description}
	if !interactive {
		return p
	}
	p.bar = progressbar.NewOptions(100*progressScale,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionEnableColorCodes(color),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "▐",
			BarEnd:        "▌",
		}),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
	return p
}

// Update moves the display to percent (0-100).
func (p *Progress) Update(percent float64) {
	percent = math.Max(0, math.Min(100, percent))
	if p.bar != nil {
		_ = p.bar.Set(int(percent * progressScale))
		return
	}
	if step := int(percent) / 10; step > p.lastStep {
		p.lastStep = step
		fmt.Fprintf(p.w, "%s %3d%%\n", p.description, step*10)
	}
}

// Finish fills the bar and ends the line.
func (p *Progress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		return
	}
	if p.lastStep < 10 {
		p.lastStep = 10
		fmt.Fprintf(p.w, "%s 100%%\n", p.description)
	}
}

// Abort leaves the bar where it stopped and ends the line.
func (p *Progress) Abort() {
	if p.bar != nil {
		_ = p.bar.Exit()
		fmt.Fprintln(p.w)
	}
}
