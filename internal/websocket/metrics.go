package websocket

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HubMetrics are the OTel instruments of the progress hub. A nil *HubMetrics
// records nothing.
type HubMetrics struct {
	connections metric.Int64Counter
	active      metric.Int64UpDownCounter
	duration    metric.Float64Histogram
	messages    metric.Int64Counter
	bytes       metric.Int64Counter
	dropped     metric.Int64Counter
}

// NewHubMetrics registers the hub instruments on meter
func NewHubMetrics(meter metric.Meter) (*HubMetrics, error) {
	m := &HubMetrics{}
	var err error

	if m.connections, err = meter.Int64Counter("edipulse_ws_connections_total",
		metric.WithDescription("Progress feed connections accepted")); err != nil {
		return nil, fmt.Errorf("failed to create connection counter: %w", err)
	}
	if m.active, err = meter.Int64UpDownCounter("edipulse_ws_connections_active",
		metric.WithDescription("Progress feed connections open")); err != nil {
		return nil, fmt.Errorf("failed to create active connection gauge: %w", err)
	}
	if m.duration, err = meter.Float64Histogram("edipulse_ws_connection_duration_seconds",
		metric.WithDescription("Lifetime of progress feed connections"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create connection duration histogram: %w", err)
	}
	if m.messages, err = meter.Int64Counter("edipulse_ws_messages_total",
		metric.WithDescription("Messages queued to progress feed clients")); err != nil {
		return nil, fmt.Errorf("failed to create message counter: %w", err)
	}
	if m.bytes, err = meter.Int64Counter("edipulse_ws_message_bytes_total",
		metric.WithDescription("Bytes queued to progress feed clients"),
		metric.WithUnit("By")); err != nil {
		return nil, fmt.Errorf("failed to create byte counter: %w", err)
	}
	if m.dropped, err = meter.Int64Counter("edipulse_ws_dropped_messages_total",
		metric.WithDescription("Messages dropped because a queue was full")); err != nil {
		return nil, fmt.Errorf("failed to create dropped message counter: %w", err)
	}
	return m, nil
}

func (m *HubMetrics) connected(ctx context.Context) {
	if m == nil {
		return
	}
	m.connections.Add(ctx, 1)
	m.active.Add(ctx, 1)
}

func (m *HubMetrics) disconnected(ctx context.Context, lifetime time.Duration, reason string) {
	if m == nil {
		return
	}
	m.active.Add(ctx, -1)
	m.duration.Record(ctx, lifetime.Seconds(), metric.WithAttributes(attribute.String("reason", reason)))
}

func (m *HubMetrics) sent(ctx context.Context, msgType string, size int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("type", msgType))
	m.messages.Add(ctx, 1, attrs)
	m.bytes.Add(ctx, int64(size), attrs)
}

func (m *HubMetrics) droppedMessage(ctx context.Context, where string) {
	if m == nil {
		return
	}
	m.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("queue", where)))
}
