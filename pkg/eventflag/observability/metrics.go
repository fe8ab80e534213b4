package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricsRecorder records eventflag metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordWait records a completed bounded wait with its duration and
	// whether the flag was observed set on exit.
	RecordWait(ctx context.Context, flagName string, duration time.Duration, signaled bool)

	// RecordSet records a set call and the number of waiters it notified.
	RecordSet(ctx context.Context, flagName string, notified int)

	// RecordClear records a clear call.
	RecordClear(ctx context.Context, flagName string)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	setCalls     metric.Int64Counter
	clearCalls   metric.Int64Counter
	waitTimeouts metric.Int64Counter
	waitLatency  metric.Float64Histogram
	notified     metric.Int64Histogram
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("eventflag")

	setCalls, err := meter.Int64Counter("eventflag.set.calls",
		metric.WithDescription("Number of set calls"),
	)
	if err != nil {
		return nil, err
	}

	clearCalls, err := meter.Int64Counter("eventflag.clear.calls",
		metric.WithDescription("Number of clear calls"),
	)
	if err != nil {
		return nil, err
	}

	waitTimeouts, err := meter.Int64Counter("eventflag.wait.timeouts",
		metric.WithDescription("Number of bounded waits that elapsed without the flag being set"),
	)
	if err != nil {
		return nil, err
	}

	waitLatency, err := meter.Float64Histogram("eventflag.wait.duration_ms",
		metric.WithDescription("Bounded wait duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	notified, err := meter.Int64Histogram("eventflag.set.notified",
		metric.WithDescription("Number of waiters notified per set call"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		setCalls:     setCalls,
		clearCalls:   clearCalls,
		waitTimeouts: waitTimeouts,
		waitLatency:  waitLatency,
		notified:     notified,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordWait records a completed bounded wait.
func (m *otelMetrics) RecordWait(ctx context.Context, flagName string, duration time.Duration, signaled bool) {
	attrs := []attribute.KeyValue{
		attribute.String("flag", flagName),
		attribute.Bool("signaled", signaled),
	}

	m.waitLatency.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if !signaled {
		m.waitTimeouts.Add(ctx, 1, metric.WithAttributes(attribute.String("flag", flagName)))
	}
}

// RecordSet records a set call.
func (m *otelMetrics) RecordSet(ctx context.Context, flagName string, notified int) {
	attrs := []attribute.KeyValue{
		attribute.String("flag", flagName),
	}
	m.setCalls.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.notified.Record(ctx, int64(notified), metric.WithAttributes(attrs...))
}

// RecordClear records a clear call.
func (m *otelMetrics) RecordClear(ctx context.Context, flagName string) {
	m.clearCalls.Add(ctx, 1, metric.WithAttributes(attribute.String("flag", flagName)))
}
