package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunBenchmark(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	require.NoError(t, os.WriteFile(src, pseudoRandom(t, 1<<20), 0644))

	result, err := RunBenchmark(context.Background(), src, filepath.Join(dir, "dst.bin"))
	require.NoError(t, err)

	assert.Greater(t, result.ReadBytesPerSec, 0.0)
	assert.Greater(t, result.WriteBytesPerSec, 0.0)
	assert.GreaterOrEqual(t, result.SuggestedWorkers, 1)

	// The write probe cleans up its temp file.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".parcp-bench-")
	}
}

func TestFindBenchFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "sub", "data.bin")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(t, os.WriteFile(target, []byte("payload"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty"), nil, 0644))

	// A file path resolves to itself.
	got, err := findBenchFile(context.Background(), target)
	require.NoError(t, err)
	assert.Equal(t, target, got)

	// A directory resolves to a non-empty file beneath it.
	got, err = findBenchFile(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, target, got)
}

func TestFindBenchFileEmptyTree(t *testing.T) {
	dir := t.TempDir()
	_, err := findBenchFile(context.Background(), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no readable files")
}

func TestSuggestWorkers(t *testing.T) {
	assert.GreaterOrEqual(t, suggestWorkers(3e9, 3e9), 1)
	assert.LessOrEqual(t, suggestWorkers(3e9, 3e9), 32)
	assert.LessOrEqual(t, suggestWorkers(500e6, 500e6), 16)
	assert.LessOrEqual(t, suggestWorkers(100e6, 100e6), 4)
	// The slower side is the bottleneck.
	assert.Equal(t, suggestWorkers(100e6, 3e9), suggestWorkers(3e9, 100e6))
}

func TestFormatBenchmark(t *testing.T) {
	out := FormatBenchmark(BenchmarkResult{
		ReadBytesPerSec:  2.5e9,
		WriteBytesPerSec: 800e6,
		SuggestedWorkers: 16,
	})
	assert.Contains(t, out, "2.5 GB/s")
	assert.Contains(t, out, "800 MB/s")
	assert.Contains(t, out, "suggested workers 16")
}
