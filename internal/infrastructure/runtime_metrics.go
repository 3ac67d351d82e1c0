package infrastructure

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// RuntimeStats is a point-in-time view of the Go runtime
type RuntimeStats struct {
	Goroutines     int
	HeapAllocBytes uint64
	SysBytes       uint64
	NumGC          uint32
	LastGCPause    time.Duration
	Uptime         time.Duration
}

// ReadRuntimeStats samples the runtime. start is the process start time.
func ReadRuntimeStats(start time.Time) RuntimeStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	return RuntimeStats{
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: ms.HeapAlloc,
		SysBytes:       ms.Sys,
		NumGC:          ms.NumGC,
		LastGCPause:    time.Duration(ms.PauseNs[(ms.NumGC+255)%256]),
		Uptime:         time.Since(start),
	}
}

// Map renders the stats for the health endpoint
func (s RuntimeStats) Map() map[string]interface{} {
	return map[string]interface{}{
		"goroutines":       s.Goroutines,
		"heap_alloc_mb":    float64(s.HeapAllocBytes) / 1024 / 1024,
		"sys_mb":           float64(s.SysBytes) / 1024 / 1024,
		"gc_count":         s.NumGC,
		"last_gc_pause_ms": s.LastGCPause.Milliseconds(),
		"go_version":       runtime.Version(),
	}
}

// RegisterRuntimeMetrics exposes runtime gauges on meter. They are sampled
// on every collection, so there is no background goroutine to stop; the
// returned registration only needs Unregister when the meter outlives the caller.
func RegisterRuntimeMetrics(meter metric.Meter, start time.Time) (metric.Registration, error) {
	goroutines, err := meter.Int64ObservableGauge("edipulse_runtime_goroutines",
		metric.WithDescription("Number of live goroutines"))
	if err != nil {
		return nil, fmt.Errorf("failed to create goroutine gauge: %w", err)
	}
	heap, err := meter.Int64ObservableGauge("edipulse_runtime_heap_alloc_bytes",
		metric.WithDescription("Bytes of allocated heap objects"),
		metric.WithUnit("By"))
	if err != nil {
		return nil, fmt.Errorf("failed to create heap gauge: %w", err)
	}
	gcCount, err := meter.Int64ObservableCounter("edipulse_runtime_gc_total",
		metric.WithDescription("Completed garbage collection cycles"))
	if err != nil {
		return nil, fmt.Errorf("failed to create gc counter: %w", err)
	}
	uptime, err := meter.Float64ObservableGauge("edipulse_process_uptime_seconds",
		metric.WithDescription("Seconds since the process started"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, fmt.Errorf("failed to create uptime gauge: %w", err)
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := ReadRuntimeStats(start)
		o.ObserveInt64(goroutines, int64(stats.Goroutines))
		o.ObserveInt64(heap, int64(stats.HeapAllocBytes))
		o.ObserveInt64(gcCount, int64(stats.NumGC))
		o.ObserveFloat64(uptime, stats.Uptime.Seconds())
		return nil
	}, goroutines, heap, gcCount, uptime)
}
