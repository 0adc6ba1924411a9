package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestParseSize(t *testing.T) {
	tests := []struct {
		input    string
		expected int64
		wantErr  bool
	}{
		{"0", 0, false},
		{"100", 100, false},
		{"100B", 100, false},
		{"1K", 1024, false},
		{"1k", 1024, false},
		{"10M", 10 * 1024 * 1024, false},
		{"1G", 1<<30, false},
		{"2T", 2<<40, false},
		{"1.5M", int64(1.5 * 1024 * 1024), false},
		{" 1K ", 1024, false},
		{"", 0, true},
		{"abc", 0, true},
		{"K", 0, true},
		{"1X", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseSize(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			continue
		}
		require.NoError(t, err, "input %q", tt.input)
		assert.Equal(t, tt.expected, got, "input %q", tt.input)
	}
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, newLimiter(0))
	assert.Nil(t, newLimiter(-1))

	l := newLimiter(10<<20)
	require.NotNil(t, l)
	assert.Equal(t, rate.Limit(10<<20), l.Limit())
	assert.Equal(t, 1<<20, l.Burst())

	// Rates below the buffer size shrink the burst to match.
	l = newLimiter(4096)
	require.NotNil(t, l)
	assert.Equal(t, 4096, l.Burst())
}

func TestWaitQuotaSlicesRequestsLargerThanBurst(t *testing.T) {
	// 1 MiB/s with a 4 KiB burst: a 16 KiB request exceeds the burst and
	// must be granted in slices rather than rejected. The bucket starts
	// full, so roughly 12 KiB of waiting remains (~11ms).
	l := rate.NewLimiter(rate.Limit(1<<20), 4<<10)

	start := time.Now()
	err := waitQuota(context.Background(), l, 16<<10)
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, elapsed, 10*time.Millisecond)
}

func TestWaitQuotaWithinBurst(t *testing.T) {
	l := rate.NewLimiter(rate.Limit(1<<20), 1<<20)

	start := time.Now()
	require.NoError(t, waitQuota(context.Background(), l, 1<<10))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestWaitQuotaCancelled(t *testing.T) {
	l := rate.NewLimiter(rate.Limit(1), 1)
	require.NoError(t, l.WaitN(context.Background(), 1)) // drain the bucket

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := waitQuota(ctx, l, 1)
	require.Error(t, err)
}
