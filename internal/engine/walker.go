package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/parcp/parcp/internal/event"
	"github.com/parcp/parcp/internal/stats"
)

// runTreeCopy walks the source tree and drives the ranged copy once per
// regular file, creating destination directories first and preserving
// relative paths. A per-file failure does not stop the walk; the first
// error becomes the job's error with a count of the rest.
func runTreeCopy(ctx context.Context, cfg Config, collector *stats.Collector) Result {
	if err := os.MkdirAll(cfg.Dst, 0755); err != nil {
		return Result{Stats: collector.Snapshot(), Err: fmt.Errorf("create destination: %w", err)}
	}

	var firstErr error
	var errCount int
	record := func(err error) {
		errCount++
		if firstErr == nil {
			firstErr = err
		}
	}

	walkErr := filepath.WalkDir(cfg.Src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			record(err)
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		relPath, err := filepath.Rel(cfg.Src, path)
		if err != nil {
			record(fmt.Errorf("rel path for %s: %w", path, err))
			return nil
		}
		dstPath := filepath.Join(cfg.Dst, relPath)

		if d.IsDir() {
			if path == cfg.Src {
				return nil // root already created
			}
			info, infoErr := d.Info()
			mode := os.FileMode(0755)
			if infoErr == nil {
				mode = info.Mode().Perm()
			}
			if mkErr := os.MkdirAll(dstPath, mode); mkErr != nil {
				record(fmt.Errorf("mkdir %s: %w", dstPath, mkErr))
				return filepath.SkipDir
			}
			collector.AddDirsCreated(1)
			emit(cfg.Events, event.Event{Type: event.DirCreated, Path: dstPath})
			return nil
		}

		if !d.Type().IsRegular() {
			return nil // symlinks, devices, sockets are skipped
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			record(fmt.Errorf("stat %s: %w", path, infoErr))
			return nil
		}

		if copyErr := copyFile(ctx, cfg, collector, path, dstPath, info); copyErr != nil {
			record(copyErr)
		}
		return nil
	})

	if walkErr != nil && firstErr == nil {
		firstErr = walkErr
		errCount++
	}
	if errCount > 1 {
		firstErr = fmt.Errorf("%w (and %d more errors)", firstErr, errCount-1)
	}

	return Result{Stats: collector.Snapshot(), Err: firstErr}
}
