package postgresengine

import (
	"github.com/librarium-io/library-catalog-go/catalog"
)

// Option defines a functional option for configuring Store.
type Option func(*Store) error

// WithCatalogTableName sets the catalog table name for the Store.
func WithCatalogTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return catalog.ErrEmptyTableNameSupplied
		}

		s.catalogTable = tableName

		return nil
	}
}

// WithCheckoutsTableName sets the checkouts table name for the Store.
func WithCheckoutsTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return catalog.ErrEmptyTableNameSupplied
		}

		s.checkoutsTable = tableName

		return nil
	}
}

// WithUsersTableName sets the users table name for the Store.
func WithUsersTableName(tableName string) Option {
	return func(s *Store) error {
		if tableName == "" {
			return catalog.ErrEmptyTableNameSupplied
		}

		s.usersTable = tableName

		return nil
	}
}

// WithLogger sets the logger for the Store.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: SQL queries with execution timing (development use)
// Info level: Record counts, durations, checkout conflicts (production-safe)
// Warn level: Non-critical issues like cleanup failures
// Error level: Critical failures that cause operation failures.
func WithLogger(logger catalog.Logger) Option {
	return func(s *Store) error {
		s.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Store.
// The contextual logger will receive log messages with context information including
// automatic trace/span correlation when tracing is enabled, enabling unified observability.
func WithContextualLogger(logger catalog.ContextualLogger) Option {
	return func(s *Store) error {
		s.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Store.
// The metrics collector will receive performance and operational metrics including
// operation durations, record counts, checkout conflicts, and database errors.
func WithMetrics(collector catalog.MetricsCollector) Option {
	return func(s *Store) error {
		s.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Store.
// The tracing collector will receive distributed tracing information including
// span creation for store operations, context propagation, and error tracking.
func WithTracing(collector catalog.TracingCollector) Option {
	return func(s *Store) error {
		s.tracingCollector = collector
		return nil
	}
}
