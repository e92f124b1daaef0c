// Package postgresengine provides the PostgreSQL implementation of the
// catalog.RecordStore interface.
//
// This package stores the catalog, checkout, and identity tables in
// PostgreSQL, supporting multiple database adapters (pgx, sql.DB, sqlx)
// with all queries rendered through goqu.
//
// Key features:
//   - Multiple database adapter support (PGX, SQL, SQLX)
//   - Checkout exclusivity enforced inside the insert statement
//   - Relevance-ranked text search rendered in SQL
//   - Configurable table names and pluggable observability
//
// Usage examples:
//
//	// Basic usage
//	db, _ := pgxpool.New(context.Background(), dsn)
//	store, _ := postgresengine.NewStoreFromPGXPool(db)
//
//	// With operational logging and custom table names
//	store, _ := postgresengine.NewStoreFromPGXPool(
//		db,
//		postgresengine.WithCatalogTableName("my_catalog"),
//		postgresengine.WithLogger(logger),
//	)
//
//	records, _ := store.FindRecords(ctx, spec)
//	err := store.InsertCheckout(ctx, bookNumber, holderID, time.Now())
package postgresengine
