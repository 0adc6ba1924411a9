package engine

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/time/rate"

	"github.com/parcp/parcp/internal/event"
	"github.com/parcp/parcp/internal/plan"
	"github.com/parcp/parcp/internal/platform"
	"github.com/parcp/parcp/internal/stats"
)

// iouringQueueDepth is the ring size for the per-worker io_uring copier.
const iouringQueueDepth = 8

// WorkerConfig controls worker behavior.
type WorkerConfig struct {
	JobID      string
	UseIOURing bool
	Limiter    *rate.Limiter
	Stats      *stats.Collector
	Events     chan<- event.Event
}

// WorkerPool executes one copy task per byte range.
type WorkerPool struct {
	cfg WorkerConfig
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(cfg WorkerConfig) *WorkerPool {
	return &WorkerPool{cfg: cfg}
}

// Run copies every range concurrently and blocks at the join barrier.
// Workers are result-returning: failures are collected per range and the
// first one (by range order) becomes the job's error. A failing worker does
// not stop the others; only context cancellation does.
func (wp *WorkerPool) Run(ctx context.Context, src, dst *os.File, ranges []plan.Range) error {
	errs := make([]error, len(ranges))
	var wg sync.WaitGroup

	for i, rng := range ranges {
		if rng.Empty() {
			continue
		}
		wg.Add(1)
		go func(i int, rng plan.Range) {
			defer wg.Done()
			errs[i] = wp.copyRange(ctx, src, dst, rng, i)
		}(i, rng)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// copyRange transfers one range through positional I/O. The progress
// callback feeds the shared byte counter and the optional bandwidth
// limiter; neither affects copy correctness.
func (wp *WorkerPool) copyRange(
	ctx context.Context,
	src, dst *os.File,
	rng plan.Range,
	worker int,
) error {
	var throttleErr error
	params := platform.RangeParams{
		Src:   src,
		Dst:   dst,
		Start: rng.Start,
		End:   rng.End,
		Progress: func(n int) {
			wp.cfg.Stats.AddBytesCopied(int64(n))
			if wp.cfg.Limiter != nil && throttleErr == nil {
				throttleErr = waitQuota(ctx, wp.cfg.Limiter, n)
			}
		},
	}

	result, err := wp.doCopy(ctx, params)
	if err == nil && throttleErr != nil {
		// A failed wait means the context died mid-range; the copy loop's
		// own check may have raced past it.
		err = throttleErr
	}
	if err != nil {
		return fmt.Errorf("worker %d range [%d,%d): %w", worker, rng.Start, rng.End, err)
	}

	wp.cfg.Stats.AddRangesCompleted(1)
	emit(wp.cfg.Events, event.Event{
		Type:   event.RangeCompleted,
		JobID:  wp.cfg.JobID,
		Worker: worker,
		Bytes:  result.BytesWritten,
	})
	return nil
}

func (wp *WorkerPool) doCopy(ctx context.Context, params platform.RangeParams) (platform.CopyResult, error) {
	if wp.cfg.UseIOURing {
		copier, err := platform.NewIOURingCopier(iouringQueueDepth)
		if err != nil {
			return platform.CopyResult{}, fmt.Errorf("init io_uring: %w", err)
		}
		if copier != nil { // nil when kernel too old
			defer copier.Close()
			return copier.CopyRange(ctx, params)
		}
	}
	return platform.CopyRange(ctx, params)
}
