// Package telemetry sets up structured logging and pipeline metrics.
//
// Logs go through log/slog with a tint handler for terminals or a JSON
// handler for log collectors. Metrics are recorded with OpenTelemetry and
// exposed in Prometheus text format.
package telemetry
