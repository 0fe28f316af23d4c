package cullgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordTick is called after each engine tick. visible is the size of
	// the post-reduction visible set, built is the number of artifacts
	// produced this tick.
	RecordTick(visible, built int, duration time.Duration)

	// RecordBatch is called after each build batch. failed is the number of
	// build operations that errored and were skipped.
	RecordBatch(built, failed int, duration time.Duration)

	// RecordRebuild is called after each lazy spatial-index rebuild.
	// dropped is the number of items that did not overlap the root bounds.
	RecordRebuild(total, dropped int, duration time.Duration)

	// RecordQuery is called after each viewport culling query.
	RecordQuery(results int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTick(int, int, time.Duration)    {}
func (NoopMetricsCollector) RecordBatch(int, int, time.Duration)   {}
func (NoopMetricsCollector) RecordRebuild(int, int, time.Duration) {}
func (NoopMetricsCollector) RecordQuery(int, time.Duration)        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	TickCount       atomic.Int64
	TickTotalNanos  atomic.Int64
	BuiltItems      atomic.Int64
	FailedBuilds    atomic.Int64
	BatchCount      atomic.Int64
	BatchTotalNanos atomic.Int64
	RebuildCount    atomic.Int64
	DroppedItems    atomic.Int64
	QueryCount      atomic.Int64
	QueryResults    atomic.Int64
}

// RecordTick implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTick(visible, built int, duration time.Duration) {
	b.TickCount.Add(1)
	b.TickTotalNanos.Add(duration.Nanoseconds())
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(built, failed int, duration time.Duration) {
	b.BatchCount.Add(1)
	b.BatchTotalNanos.Add(duration.Nanoseconds())
	b.BuiltItems.Add(int64(built))
	b.FailedBuilds.Add(int64(failed))
}

// RecordRebuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRebuild(total, dropped int, duration time.Duration) {
	b.RebuildCount.Add(1)
	b.DroppedItems.Add(int64(dropped))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(results int, duration time.Duration) {
	b.QueryCount.Add(1)
	b.QueryResults.Add(int64(results))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		TickCount:     b.TickCount.Load(),
		TickAvgNanos:  b.avgTickNanos(),
		BuiltItems:    b.BuiltItems.Load(),
		FailedBuilds:  b.FailedBuilds.Load(),
		BatchCount:    b.BatchCount.Load(),
		BatchAvgNanos: b.avgBatchNanos(),
		RebuildCount:  b.RebuildCount.Load(),
		DroppedItems:  b.DroppedItems.Load(),
		QueryCount:    b.QueryCount.Load(),
		QueryResults:  b.QueryResults.Load(),
	}
}

func (b *BasicMetricsCollector) avgTickNanos() int64 {
	count := b.TickCount.Load()
	if count == 0 {
		return 0
	}
	return b.TickTotalNanos.Load() / count
}

func (b *BasicMetricsCollector) avgBatchNanos() int64 {
	count := b.BatchCount.Load()
	if count == 0 {
		return 0
	}
	return b.BatchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	TickCount     int64
	TickAvgNanos  int64
	BuiltItems    int64
	FailedBuilds  int64
	BatchCount    int64
	BatchAvgNanos int64
	RebuildCount  int64
	DroppedItems  int64
	QueryCount    int64
	QueryResults  int64
}
