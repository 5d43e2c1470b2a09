// Package otel exposes the engine's counters as OpenTelemetry observable
// instruments.
//
// [NewOTelExporter] registers one Int64ObservableCounter per engine
// counter plus an audit-backpressure counter. A single callback reads
// [accountd.Engine.MetricsSnapshot] on each collection cycle, so the
// engine's hot path stays free of exporter work.
//
// The package never owns the MeterProvider; callers supply the Meter.
package otel
