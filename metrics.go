package pinelocal

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// The server package ships a Prometheus implementation.
type MetricsCollector interface {
	// RecordCreateIndex is called after each create (or import) of an index.
	RecordCreateIndex(duration time.Duration, err error)

	// RecordDeleteIndex is called after each index deletion.
	RecordDeleteIndex(duration time.Duration, err error)

	// RecordUpsert is called after each upsert batch.
	// count is the batch size.
	RecordUpsert(count int, duration time.Duration, err error)

	// RecordQuery is called after each query.
	// k is the requested topK.
	RecordQuery(k int, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordCreateIndex(time.Duration, error) {}
func (NoopMetricsCollector) RecordDeleteIndex(time.Duration, error) {}
func (NoopMetricsCollector) RecordUpsert(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordQuery(int, time.Duration, error)  {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	CreateCount      atomic.Int64
	CreateErrors     atomic.Int64
	DeleteCount      atomic.Int64
	DeleteErrors     atomic.Int64
	UpsertCount      atomic.Int64
	UpsertVectors    atomic.Int64
	UpsertErrors     atomic.Int64
	UpsertTotalNanos atomic.Int64
	QueryCount       atomic.Int64
	QueryErrors      atomic.Int64
	QueryTotalNanos  atomic.Int64
}

// RecordCreateIndex implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCreateIndex(_ time.Duration, err error) {
	b.CreateCount.Add(1)
	if err != nil {
		b.CreateErrors.Add(1)
	}
}

// RecordDeleteIndex implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDeleteIndex(_ time.Duration, err error) {
	b.DeleteCount.Add(1)
	if err != nil {
		b.DeleteErrors.Add(1)
	}
}

// RecordUpsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpsert(count int, duration time.Duration, err error) {
	b.UpsertCount.Add(1)
	b.UpsertTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.UpsertErrors.Add(1)
		return
	}
	b.UpsertVectors.Add(int64(count))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_ int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		CreateCount:    b.CreateCount.Load(),
		CreateErrors:   b.CreateErrors.Load(),
		DeleteCount:    b.DeleteCount.Load(),
		DeleteErrors:   b.DeleteErrors.Load(),
		UpsertCount:    b.UpsertCount.Load(),
		UpsertVectors:  b.UpsertVectors.Load(),
		UpsertErrors:   b.UpsertErrors.Load(),
		UpsertAvgNanos: avg(b.UpsertTotalNanos.Load(), b.UpsertCount.Load()),
		QueryCount:     b.QueryCount.Load(),
		QueryErrors:    b.QueryErrors.Load(),
		QueryAvgNanos:  avg(b.QueryTotalNanos.Load(), b.QueryCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	CreateCount    int64
	CreateErrors   int64
	DeleteCount    int64
	DeleteErrors   int64
	UpsertCount    int64
	UpsertVectors  int64
	UpsertErrors   int64
	UpsertAvgNanos int64
	QueryCount     int64
	QueryErrors    int64
	QueryAvgNanos  int64
}
