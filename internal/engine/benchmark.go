package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// BenchmarkResult holds throughput measurements.
type BenchmarkResult struct {
	ReadBytesPerSec  float64
	WriteBytesPerSec float64
	SuggestedWorkers int
}

const benchSize = 64 * 1024 * 1024 // 64 MiB

// RunBenchmark measures source read and destination write throughput to
// suggest a worker count before the copy. src may be a file or a directory;
// the write probe uses the destination's parent directory.
func RunBenchmark(ctx context.Context, src, dst string) (BenchmarkResult, error) {
	var result BenchmarkResult

	readSpeed, err := benchRead(ctx, src)
	if err != nil {
		return result, fmt.Errorf("read benchmark: %w", err)
	}
	result.ReadBytesPerSec = readSpeed

	writeSpeed, err := benchWrite(filepath.Dir(dst))
	if err != nil {
		return result, fmt.Errorf("write benchmark: %w", err)
	}
	result.WriteBytesPerSec = writeSpeed

	result.SuggestedWorkers = suggestWorkers(readSpeed, writeSpeed)
	return result, nil
}

// findBenchFile resolves src to a readable regular file: src itself when it
// is a file, otherwise the first sufficiently large file under it.
func findBenchFile(ctx context.Context, src string) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return src, nil
	}

	var target string
	err = filepath.WalkDir(src, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		fi, infoErr := d.Info()
		if infoErr != nil {
			return nil //nolint:nilerr // skip files we can't stat
		}
		if fi.Size() >= benchSize {
			target = path
			return filepath.SkipAll
		}
		if target == "" && fi.Size() > 0 {
			target = path
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if target == "" {
		return "", fmt.Errorf("no readable files in %s", src)
	}
	return target, nil
}

// benchRead reads up to benchSize bytes from the probe file, measuring throughput.
func benchRead(ctx context.Context, src string) (float64, error) {
	target, err := findBenchFile(ctx, src)
	if err != nil {
		return 0, err
	}

	f, err := os.Open(target)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	buf := make([]byte, 1<<20)
	var total int64
	start := time.Now()
	for total < benchSize {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		n, readErr := f.Read(buf)
		total += int64(n)
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return 0, readErr
		}
	}
	elapsed := time.Since(start)
	if elapsed == 0 {
		elapsed = time.Microsecond
	}
	return float64(total) / elapsed.Seconds(), nil
}

// benchWrite creates a temp file in dir, writes benchSize zero bytes,
// fsyncs, and measures throughput.
func benchWrite(dir string) (float64, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}

	f, err := os.CreateTemp(dir, ".parcp-bench-*")
	if err != nil {
		return 0, err
	}
	tmpPath := f.Name()
	defer os.Remove(tmpPath)
	defer f.Close()

	buf := make([]byte, 1<<20)
	var total int64
	start := time.Now()
	for total < benchSize {
		n, writeErr := f.Write(buf)
		total += int64(n)
		if writeErr != nil {
			return 0, writeErr
		}
	}
	if err := f.Sync(); err != nil {
		return 0, err
	}
	elapsed := time.Since(start)
	if elapsed == 0 {
		elapsed = time.Microsecond
	}
	return float64(total) / elapsed.Seconds(), nil
}

// suggestWorkers returns a worker count based on measured throughput.
func suggestWorkers(readBPS, writeBPS float64) int {
	bottleneck := readBPS
	if writeBPS < bottleneck {
		bottleneck = writeBPS
	}

	cpus := runtime.NumCPU()

	switch {
	case bottleneck >= 2e9: // NVMe territory
		return min(cpus*2, 32)
	case bottleneck >= 200e6: // SATA SSD
		return min(cpus, 16)
	default: // spinning disk
		return min(4, cpus)
	}
}

// FormatBenchmark formats a BenchmarkResult for display.
func FormatBenchmark(r BenchmarkResult) string {
	return fmt.Sprintf("benchmark: read %s/s  write %s/s  suggested workers %d",
		formatBPS(r.ReadBytesPerSec), formatBPS(r.WriteBytesPerSec), r.SuggestedWorkers)
}

func formatBPS(b float64) string {
	switch {
	case b >= 1e9:
		return fmt.Sprintf("%.1f GB", b/1e9)
	case b >= 1e6:
		return fmt.Sprintf("%.0f MB", b/1e6)
	case b >= 1e3:
		return fmt.Sprintf("%.0f KB", b/1e3)
	default:
		return fmt.Sprintf("%.0f B", b)
	}
}
