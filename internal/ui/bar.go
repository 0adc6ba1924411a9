package ui

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/parcp/parcp/internal/stats"
)

// barPresenter renders an interactive byte-progress bar on the TTY, driven
// by Progress events from the engine's aggregator.
type barPresenter struct {
	w       io.Writer
	stats   *stats.Collector
	srcRoot string

	bar       *progressbar.ProgressBar
	lastBytes int64
	lastTotal int64
}

func newBarPresenter(w io.Writer, collector *stats.Collector, srcRoot string) *barPresenter {
	return &barPresenter{
		w:       w,
		stats:   collector,
		srcRoot: srcRoot,
	}
}

func (p *barPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.finish()
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.stats.Tick()
			if p.bar != nil {
				p.bar.Describe(p.describe())
			}
		}
	}
}

func (p *barPresenter) handleEvent(ev Event) {
	switch ev.Type {
	case CopyStarted:
		p.ensureBar(ev.Total)
	case Progress:
		p.ensureBar(ev.Total)
		if ev.Total > p.lastTotal {
			p.bar.ChangeMax64(ev.Total)
			p.lastTotal = ev.Total
		}
		if delta := ev.Bytes - p.lastBytes; delta > 0 {
			_ = p.bar.Add64(delta)
			p.lastBytes = ev.Bytes
		}
	case VerifyStarted:
		if p.bar != nil {
			p.bar.Describe("verifying " + StripRoot(p.srcRoot, ev.Path))
		}
	case VerifyOK, VerifyFailed, FileCompleted, FileFailed, RangeCompleted, DirCreated:
		// bar state is byte-driven; per-file events only refresh the label
		if p.bar != nil {
			p.bar.Describe(p.describe())
		}
	}
}

// ensureBar lazily creates the bar once a total is known. Trees grow the
// total as the walk discovers files, so the max is adjusted as events arrive.
func (p *barPresenter) ensureBar(total int64) {
	if p.bar != nil {
		return
	}
	p.lastTotal = total
	p.bar = progressbar.NewOptions64(
		total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription("copying"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(120*time.Millisecond),
	)
	_ = p.bar.RenderBlank()
}

func (p *barPresenter) describe() string {
	snap := p.stats.Snapshot()
	if snap.FilesCopied+snap.FilesFailed > 1 || snap.DirsCreated > 0 {
		return "copying " + FormatCount(snap.FilesCopied) + " files"
	}
	return "copying"
}

func (p *barPresenter) finish() {
	if p.bar == nil {
		return
	}
	// Top the bar up with any bytes the last throttled event missed.
	if delta := p.stats.BytesCopied() - p.lastBytes; delta > 0 {
		_ = p.bar.Add64(delta)
	}
	_ = p.bar.Finish()
}

func (p *barPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
