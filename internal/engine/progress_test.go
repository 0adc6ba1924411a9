package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcp/parcp/internal/event"
	"github.com/parcp/parcp/internal/stats"
)

func TestAggregateStopsAtTotal(t *testing.T) {
	collector := stats.NewCollector()
	collector.AddBytesTotal(100)
	collector.AddBytesCopied(100)

	events := make(chan event.Event, 16)
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		aggregate(collector, CopyJob{ID: "job", Size: 100}, events, done)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("aggregator did not stop after counter reached total")
	}

	require.NotEmpty(t, events)
	ev := <-events
	assert.Equal(t, event.Progress, ev.Type)
	assert.Equal(t, int64(100), ev.Bytes)
	assert.Equal(t, int64(100), ev.Total)
}

func TestAggregateStopsOnJoinBarrier(t *testing.T) {
	collector := stats.NewCollector()
	collector.AddBytesTotal(1000)
	collector.AddBytesCopied(400) // mid-copy

	events := make(chan event.Event, 16)
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		aggregate(collector, CopyJob{ID: "job", Size: 1000}, events, done)
		close(finished)
	}()

	close(done)

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("aggregator did not stop on join barrier")
	}

	// A final Progress event is emitted on shutdown.
	var last event.Event
	for len(events) > 0 {
		last = <-events
	}
	assert.Equal(t, event.Progress, last.Type)
	assert.Equal(t, int64(400), last.Bytes)
}

func TestAggregateNilEventsChannel(t *testing.T) {
	collector := stats.NewCollector()
	collector.AddBytesTotal(10)
	collector.AddBytesCopied(10)

	finished := make(chan struct{})
	go func() {
		aggregate(collector, CopyJob{ID: "job", Size: 10}, nil, make(chan struct{}))
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("aggregator blocked on nil events channel")
	}
}
