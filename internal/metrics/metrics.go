// Package metrics tracks request latency so slow endpoints and retry
// storms show up in the logs without external tooling.
package metrics

import (
	"sync"
	"time"

	"github.com/ozgur-d/binance-client/internal/logger"
)

const defaultBatchSize = 500

// Tracker accumulates per-request durations and logs a min/max/avg summary
// every batch.
type Tracker struct {
	mu        sync.Mutex
	minTime   time.Duration
	maxTime   time.Duration
	totalTime time.Duration
	count     int64
	batch     int
	batchSize int
}

func NewTracker(batchSize int) *Tracker {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Tracker{
		minTime:   time.Duration(1<<63 - 1),
		batchSize: batchSize,
	}
}

// Track records one completed request.
func (t *Tracker) Track(endpoint string, duration time.Duration) {
	t.mu.Lock()

	t.count++
	t.batch++
	t.totalTime += duration
	if duration < t.minTime {
		t.minTime = duration
	}
	if duration > t.maxTime {
		t.maxTime = duration
	}

	if t.batch < t.batchSize {
		t.mu.Unlock()
		return
	}

	avg := t.totalTime / time.Duration(t.count)
	minTime, maxTime, count := t.minTime, t.maxTime, t.count
	t.batch = 0
	t.mu.Unlock()

	logger.Info("Request Latency Metrics",
		"last_endpoint", endpoint,
		"last_ms", duration.Milliseconds(),
		"min_ms", minTime.Milliseconds(),
		"max_ms", maxTime.Milliseconds(),
		"avg_ms", avg.Milliseconds(),
		"total_requests", count,
	)
}
