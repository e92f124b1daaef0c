// Package config provides database connection configuration for the example
// applications. Each supported driver (pgx pool, database/sql, sqlx) gets a
// preconfigured constructor pointing at the local catalog database.
package config
