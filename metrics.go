package condense

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    loadCounter    prometheus.Counter
//	    queryHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordLoad(bytes int, duration time.Duration, err error) {
//	    p.loadCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordLoad is called after each explicit Load.
	// bytes is the raw blob size read, duration is the total time taken,
	// err is nil if successful.
	RecordLoad(bytes int, duration time.Duration, err error)

	// RecordRewrite is called after each explicit Rewrite.
	// bytes is the blob size written after encoding, compression and
	// sealing.
	RecordRewrite(bytes int, duration time.Duration, err error)

	// RecordMutation is called after each mutating operation: "insert",
	// "remove", "update", "setField" or "delete". duration covers the full
	// load-mutate-rewrite cycle.
	RecordMutation(op string, duration time.Duration, err error)

	// RecordQuery is called after each query operation: "select", "where",
	// "in", "like", "exists", "count", "first", "last", "indexOf", "union"
	// or "join". duration includes the load.
	RecordQuery(op string, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)        {}
func (NoopMetricsCollector) RecordRewrite(int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordMutation(string, time.Duration, error) {}
func (NoopMetricsCollector) RecordQuery(string, time.Duration, error)    {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	LoadCount          atomic.Int64
	LoadErrors         atomic.Int64
	LoadBytes          atomic.Int64
	LoadTotalNanos     atomic.Int64
	RewriteCount       atomic.Int64
	RewriteErrors      atomic.Int64
	RewriteBytes       atomic.Int64
	RewriteTotalNanos  atomic.Int64
	MutationCount      atomic.Int64
	MutationErrors     atomic.Int64
	MutationTotalNanos atomic.Int64
	QueryCount         atomic.Int64
	QueryErrors        atomic.Int64
	QueryTotalNanos    atomic.Int64
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(bytes int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadBytes.Add(int64(bytes))
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
	}
}

// RecordRewrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRewrite(bytes int, duration time.Duration, err error) {
	b.RewriteCount.Add(1)
	b.RewriteBytes.Add(int64(bytes))
	b.RewriteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RewriteErrors.Add(1)
	}
}

// RecordMutation implements MetricsCollector.
func (b *BasicMetricsCollector) RecordMutation(op string, duration time.Duration, err error) {
	b.MutationCount.Add(1)
	b.MutationTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.MutationErrors.Add(1)
	}
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(op string, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		LoadCount:        b.LoadCount.Load(),
		LoadErrors:       b.LoadErrors.Load(),
		LoadBytes:        b.LoadBytes.Load(),
		LoadAvgNanos:     avgNanos(&b.LoadTotalNanos, &b.LoadCount),
		RewriteCount:     b.RewriteCount.Load(),
		RewriteErrors:    b.RewriteErrors.Load(),
		RewriteBytes:     b.RewriteBytes.Load(),
		RewriteAvgNanos:  avgNanos(&b.RewriteTotalNanos, &b.RewriteCount),
		MutationCount:    b.MutationCount.Load(),
		MutationErrors:   b.MutationErrors.Load(),
		MutationAvgNanos: avgNanos(&b.MutationTotalNanos, &b.MutationCount),
		QueryCount:       b.QueryCount.Load(),
		QueryErrors:      b.QueryErrors.Load(),
		QueryAvgNanos:    avgNanos(&b.QueryTotalNanos, &b.QueryCount),
	}
}

func avgNanos(total, count *atomic.Int64) int64 {
	n := count.Load()
	if n == 0 {
		return 0
	}
	return total.Load() / n
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	LoadCount        int64
	LoadErrors       int64
	LoadBytes        int64
	LoadAvgNanos     int64
	RewriteCount     int64
	RewriteErrors    int64
	RewriteBytes     int64
	RewriteAvgNanos  int64
	MutationCount    int64
	MutationErrors   int64
	MutationAvgNanos int64
	QueryCount       int64
	QueryErrors      int64
	QueryAvgNanos    int64
}
