// Package catalog provides the core types and ports for the library-catalog
// management backend.
//
// It defines the catalog record and checkout data model, the closed code
// enumerations (categories, languages, revision tags), the typed FindSpec
// query configuration with its builder, the RecordStore port implemented by
// the postgresengine package, and the dependency-free observability
// interfaces shared by all components.
//
// Key types:
//   - CatalogRecord: one book entry with derived identification fields
//   - CheckoutRecord: one row of lending history
//   - FindSpec: filter, search and pagination configuration for queries
//   - Session: explicit caller identity and authorization
//
// Common usage pattern:
//
//	spec := catalog.BuildFindSpec().
//		AnyCategoryOf(catalog.CategoryGita).
//		PublishedBetween(1980, 2000).
//		WithTitleSearch("upanishad").
//		OnPage(2).
//		Finalize()
//
//	result, err := engine.Find(ctx, session, spec)
//	if err != nil {
//		// handle error
//	}
package catalog
