package engine

import (
	"time"

	"github.com/parcp/parcp/internal/event"
	"github.com/parcp/parcp/internal/stats"
)

// progressInterval is how often the aggregator samples the byte counter.
const progressInterval = 50 * time.Millisecond

// aggregate observes the shared byte counter and emits Progress events. It
// performs only atomic loads and non-blocking sends, so it can never delay
// a worker. It terminates once the counter reaches the job size or the join
// barrier resolves, whichever happens first.
func aggregate(collector *stats.Collector, job CopyJob, events chan<- event.Event, done <-chan struct{}) {
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			emit(events, event.Event{
				Type:  event.Progress,
				JobID: job.ID,
				Bytes: collector.BytesCopied(),
				Total: collector.BytesTotal(),
			})
			return
		case <-ticker.C:
			copied := collector.BytesCopied()
			emit(events, event.Event{
				Type:  event.Progress,
				JobID: job.ID,
				Bytes: copied,
				Total: collector.BytesTotal(),
			})
			if copied >= collector.BytesTotal() && job.Size > 0 {
				return
			}
		}
	}
}
