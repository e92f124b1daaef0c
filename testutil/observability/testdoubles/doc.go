// Package testdoubles provides test doubles (spies) for the catalog's
// observability interfaces:
//   - ContextualLoggerSpy: captures structured logging with context
//   - MetricsCollectorSpy: captures metrics recording calls for verification
//   - TracingCollectorSpy: captures tracing spans and their attributes
//
// These test doubles enable testing of observability instrumentation without
// requiring actual telemetry backends.
package testdoubles
