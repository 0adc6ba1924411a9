package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/parcp/parcp/internal/stats"
)

// plainPresenter outputs one line per completed file to stdout,
// and periodic progress to stderr when not a TTY.
type plainPresenter struct {
	w       io.Writer
	errW    io.Writer
	stats   *stats.Collector
	srcRoot string
	verbose bool
}

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.stats.Tick()
			p.printProgress()
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	path := StripRoot(p.srcRoot, ev.Path)
	switch ev.Type {
	case CopyStarted:
		if p.verbose {
			fmt.Fprintf(p.w, "copying %s (%s)\n", path, FormatBytes(ev.Total))
		}
	case RangeCompleted:
		if p.verbose {
			fmt.Fprintf(p.w, "worker %d done  %s\n", ev.Worker, FormatBytes(ev.Bytes))
		}
	case FileCompleted:
		speed := p.stats.RollingSpeed(5)
		fmt.Fprintf(p.w, "%s  %s  %s\n", path, FormatBytes(ev.Bytes), FormatRate(speed))
	case FileFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		fmt.Fprintf(p.w, "%s  %s\n", path, errMsg)
	case DirCreated:
		if p.verbose {
			fmt.Fprintf(p.w, "mkdir %s\n", path)
		}
	case VerifyStarted:
		fmt.Fprintln(p.w, "verifying...")
	case VerifyFailed:
		if ev.Error != nil {
			fmt.Fprintf(p.w, "MISMATCH: %s: %s\n", path, ev.Error)
		} else {
			fmt.Fprintf(p.w, "MISMATCH: %s\n", path)
		}
	case VerifyOK:
		fmt.Fprintf(p.w, "verified: %s\n", path)
	case Progress:
		// handled by the ticker
	}
}

func (p *plainPresenter) printProgress() {
	snap := p.stats.Snapshot()
	if snap.BytesTotal > 0 {
		pct := float64(snap.BytesCopied) / float64(snap.BytesTotal) * 100
		speed := p.stats.RollingSpeed(10)
		eta := p.stats.ETA()
		fmt.Fprintf(p.errW, "progress: %.0f%% %s/%s %s eta %s\n",
			pct,
			FormatBytes(snap.BytesCopied), FormatBytes(snap.BytesTotal),
			FormatRate(speed),
			FormatETA(eta),
		)
	} else {
		fmt.Fprintf(p.errW, "progress: %s copied %s files\n",
			FormatBytes(snap.BytesCopied),
			FormatCount(snap.FilesCopied),
		)
	}
}

func (p *plainPresenter) Summary() string {
	return CompletionSummary(p.stats.Snapshot())
}
