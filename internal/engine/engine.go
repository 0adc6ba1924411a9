// Package engine implements the ranged parallel copy pipeline: partition,
// concurrent positional copy, progress aggregation, and verification.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/parcp/parcp/internal/event"
	"github.com/parcp/parcp/internal/plan"
	"github.com/parcp/parcp/internal/platform"
	"github.com/parcp/parcp/internal/stats"
)

// Config describes a copy operation.
type Config struct {
	Src        string
	Dst        string
	Workers    int
	Recursive  bool
	Verify     bool  // streaming byte comparison after copy
	Checksum   bool  // BLAKE3 digest comparison after copy
	UseIOURing bool  // Linux only; falls back silently elsewhere
	BWLimit    int64 // aggregate bytes/sec, 0 = unlimited
	Events     chan<- event.Event
	Stats      *stats.Collector
}

// Result is the outcome of a copy operation.
type Result struct {
	Stats stats.Snapshot
	Err   error
}

// CopyJob captures the immutable parameters of one single-file copy. It is
// created at job start, after the source size is read once from metadata.
type CopyJob struct {
	ID      string
	Src     string
	Dst     string
	Size    int64
	Workers int
}

// NewCopyJob reads nothing; size must come from source metadata. The worker
// count is clamped and forced to 1 for small files.
func NewCopyJob(src, dst string, size int64, workers int) CopyJob {
	return CopyJob{
		ID:      uuid.NewString()[:8],
		Src:     src,
		Dst:     dst,
		Size:    size,
		Workers: plan.Workers(size, workers),
	}
}

// Run executes a copy operation, blocking until complete.
func Run(ctx context.Context, cfg Config) Result {
	collector := cfg.Stats
	if collector == nil {
		collector = stats.NewCollector()
	}

	srcInfo, err := os.Stat(cfg.Src)
	if err != nil {
		return Result{Stats: collector.Snapshot(), Err: fmt.Errorf("source: %w", err)}
	}

	if srcInfo.IsDir() {
		if !cfg.Recursive {
			return Result{
				Stats: collector.Snapshot(),
				Err:   fmt.Errorf("source %s is a directory (use -r)", cfg.Src),
			}
		}
		return runTreeCopy(ctx, cfg, collector)
	}

	dst := cfg.Dst
	// If dst is an existing directory, copy into it.
	if dstInfo, statErr := os.Stat(dst); statErr == nil && dstInfo.IsDir() {
		dst = filepath.Join(dst, filepath.Base(cfg.Src))
	}

	copyErr := copyFile(ctx, cfg, collector, cfg.Src, dst, srcInfo)
	return Result{Stats: collector.Snapshot(), Err: copyErr}
}

// copyFile copies one regular file by partitioning it into worker ranges.
// The destination length is fixed to the source size strictly before any
// worker starts, so writes may land in any order.
func copyFile(
	ctx context.Context,
	cfg Config,
	collector *stats.Collector,
	srcPath, dstPath string,
	srcInfo os.FileInfo,
) error {
	job := NewCopyJob(srcPath, dstPath, srcInfo.Size(), cfg.Workers)

	src, err := os.Open(srcPath)
	if err != nil {
		collector.AddFilesFailed(1)
		return fmt.Errorf("source: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		collector.AddFilesFailed(1)
		return fmt.Errorf("create destination: %w", err)
	}
	defer dst.Close()

	if err := dst.Truncate(job.Size); err != nil {
		collector.AddFilesFailed(1)
		return fmt.Errorf("preallocate destination: %w", err)
	}
	platform.Preallocate(dst, job.Size)

	collector.AddBytesTotal(job.Size)
	emit(cfg.Events, event.Event{
		Type:  event.CopyStarted,
		JobID: job.ID,
		Path:  srcPath,
		Total: job.Size,
	})

	ranges := plan.Partition(job.Size, job.Workers)

	pool := NewWorkerPool(WorkerConfig{
		JobID:      job.ID,
		UseIOURing: cfg.UseIOURing,
		Limiter:    newLimiter(cfg.BWLimit),
		Stats:      collector,
		Events:     cfg.Events,
	})

	done := make(chan struct{})
	go aggregate(collector, job, cfg.Events, done)

	copyErr := pool.Run(ctx, src, dst, ranges)
	close(done) // join barrier resolved

	if copyErr == nil {
		if err := dst.Close(); err != nil {
			copyErr = fmt.Errorf("close destination: %w", err)
		}
	}

	if copyErr != nil {
		collector.AddFilesFailed(1)
		emit(cfg.Events, event.Event{
			Type:  event.FileFailed,
			JobID: job.ID,
			Path:  srcPath,
			Error: copyErr,
		})
		return copyErr
	}

	collector.AddFilesCopied(1)
	emit(cfg.Events, event.Event{
		Type:  event.FileCompleted,
		JobID: job.ID,
		Path:  srcPath,
		Bytes: job.Size,
	})

	if cfg.Verify || cfg.Checksum {
		return verifyJob(cfg, collector, job)
	}
	return nil
}

// verifyJob runs the requested verification strictly after the join
// barrier, on fresh file handles. A failed verification never deletes the
// destination; the process may lack the privilege to clean up.
func verifyJob(cfg Config, collector *stats.Collector, job CopyJob) error {
	emit(cfg.Events, event.Event{Type: event.VerifyStarted, JobID: job.ID, Path: job.Dst})

	var err error
	if cfg.Checksum {
		err = VerifyChecksum(job.Src, job.Dst)
	} else {
		err = VerifyContents(job.Src, job.Dst)
	}

	if err != nil {
		collector.AddFilesVerifyFailed(1)
		ev := event.Event{Type: event.VerifyFailed, JobID: job.ID, Path: job.Dst, Error: err}
		var mismatch *MismatchError
		if errors.As(err, &mismatch) {
			ev.Offset = mismatch.Offset
		}
		emit(cfg.Events, ev)
		return err
	}

	collector.AddFilesVerified(1)
	emit(cfg.Events, event.Event{Type: event.VerifyOK, JobID: job.ID, Path: job.Dst})
	return nil
}

// emit sends an event without ever blocking the engine.
func emit(ch chan<- event.Event, e event.Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}
