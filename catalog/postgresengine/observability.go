package postgresengine

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/librarium-io/library-catalog-go/catalog"
)

// logQueryWithDuration logs SQL queries with execution time at debug level if a logger is configured.
// The contextual logger takes precedence when both are configured.
func (s *Store) logQueryWithDuration(ctx context.Context, sqlQuery string, duration time.Duration) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.DebugContext(ctx, logMsgSQLExecuted, logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery)
	case s.logger != nil:
		s.logger.Debug(logMsgSQLExecuted, logAttrDurationMS, s.toMilliseconds(duration), logAttrQuery, sqlQuery)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (s *Store) logOperation(ctx context.Context, action string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.InfoContext(ctx, logMsgOperation+action, args...)
	case s.logger != nil:
		s.logger.Info(logMsgOperation+action, args...)
	}
}

// logWarn logs non-critical issues at warn level if a logger is configured.
func (s *Store) logWarn(ctx context.Context, message string, args ...any) {
	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.WarnContext(ctx, message, args...)
	case s.logger != nil:
		s.logger.Warn(message, args...)
	}
}

// logError logs error information at error level if a logger is configured.
func (s *Store) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	switch {
	case s.contextualLogger != nil:
		s.contextualLogger.ErrorContext(ctx, message, allArgs...)
	case s.logger != nil:
		s.logger.Error(message, allArgs...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (s *Store) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordDurationMetrics records operation duration if the metrics collector is configured.
func (s *Store) recordDurationMetrics(operation, status string, duration time.Duration) {
	if s.metricsCollector != nil {
		labels := map[string]string{
			spanAttrOperation: operation,
			labelStatus:       status,
		}
		s.metricsCollector.RecordDuration(metricOperationDuration, duration, labels)
	}
}

// recordValueMetrics records an operation result size if the metrics collector is configured.
func (s *Store) recordValueMetrics(operation string, value float64) {
	if s.metricsCollector != nil {
		labels := map[string]string{
			spanAttrOperation: operation,
			labelStatus:       statusSuccess,
		}
		s.metricsCollector.RecordValue(metricRecordsReturned, value, labels)
	}
}

// recordErrorMetrics records database errors if the metrics collector is configured.
func (s *Store) recordErrorMetrics(operation, errorType string) {
	if s.metricsCollector != nil {
		labels := map[string]string{
			spanAttrOperation: operation,
			labelStatus:       statusError,
			spanAttrErrorType: errorType,
		}
		s.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
	}
}

// recordCheckoutConflictMetrics records lending conflicts if the metrics collector is configured.
func (s *Store) recordCheckoutConflictMetrics(operation string) {
	if s.metricsCollector != nil {
		labels := map[string]string{
			spanAttrOperation: operation,
			labelConflictType: "checkout",
		}
		s.metricsCollector.IncrementCounter(metricCheckoutConflicts, labels)
	}
}

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (s *Store) startTraceSpan(ctx context.Context, operation string) (context.Context, catalog.SpanContext) {
	if s.tracingCollector != nil {
		attrs := map[string]string{
			spanAttrOperation: operation,
		}

		return s.tracingCollector.StartSpan(ctx, spanNamePrefix+operation, attrs)
	}

	return ctx, nil
}

// finishTraceSpan finishes a tracing span if the tracing collector is configured.
func (s *Store) finishTraceSpan(spanCtx catalog.SpanContext, status string, attrs map[string]string) {
	if s.tracingCollector != nil && spanCtx != nil {
		s.tracingCollector.FinishSpan(spanCtx, status, attrs)
	}
}

// operationObserver bundles span and metrics lifecycle for a single store
// operation, so each public method observes success and failure the same way.
type operationObserver struct {
	s         *Store
	ctx       context.Context
	operation string
	span      catalog.SpanContext
}

// startObserving creates an observer for the operation and returns the
// possibly span-enriched context to run the operation under.
func (s *Store) startObserving(ctx context.Context, operation string) (*operationObserver, context.Context) {
	newCtx, span := s.startTraceSpan(ctx, operation)

	return &operationObserver{
		s:         s,
		ctx:       newCtx,
		operation: operation,
		span:      span,
	}, newCtx
}

// succeeded records duration and result-size metrics, finishes the span, and
// logs the operation at info level.
func (o *operationObserver) succeeded(duration time.Duration, resultSize float64, logArgs ...any) {
	o.s.recordDurationMetrics(o.operation, statusSuccess, duration)
	o.s.recordValueMetrics(o.operation, resultSize)

	if o.span != nil {
		o.span.SetStatus(statusSuccess)
		o.span.AddAttribute(spanAttrDurationM, fmt.Sprintf("%.2f", o.s.toMilliseconds(duration)))
	}
	o.s.finishTraceSpan(o.span, statusSuccess, nil)

	allArgs := append([]any{logAttrDurationMS, o.s.toMilliseconds(duration)}, logArgs...)
	o.s.logOperation(o.ctx, o.operation, allArgs...)
}

// failed records error metrics, finishes the span with the error type, and
// logs the failure.
func (o *operationObserver) failed(errorType string, err error, duration time.Duration) {
	if duration > 0 {
		o.s.recordDurationMetrics(o.operation, statusError, duration)
	}
	o.s.recordErrorMetrics(o.operation, errorType)
	o.finishSpanError(errorType)

	o.s.logError(o.ctx, logMsgOperation+o.operation, err)
}

// finishSpanError finishes the span with error status without logging, for
// outcomes the caller reports itself.
func (o *operationObserver) finishSpanError(errorType string) {
	if o.span != nil {
		o.span.SetStatus(statusError)
		o.span.AddAttribute(spanAttrErrorType, errorType)
	}
	o.s.finishTraceSpan(o.span, statusError, map[string]string{spanAttrErrorType: errorType})
}
