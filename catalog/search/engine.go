// Package search answers catalog queries: it turns a catalog.FindSpec into
// one page of records with pagination metadata and enriches the page with
// lending status.
package search

import (
	"context"

	"github.com/librarium-io/library-catalog-go/catalog"
)

// RecordFinder defines the interface needed by the Engine for record
// retrieval and counting.
type RecordFinder interface {
	FindRecords(ctx context.Context, spec catalog.FindSpec) ([]catalog.CatalogRecord, error)
	CountRecords(ctx context.Context, spec catalog.FindSpec) (int64, error)
}

// LendingResolver defines the interface needed by the Engine to enrich a
// result page with lending status.
type LendingResolver interface {
	StatusForPage(ctx context.Context, session catalog.Session, bookNumbers []int64) (map[int64]catalog.LendingStatus, error)
}

// Row is one catalog record together with its lending status.
type Row struct {
	Record  catalog.CatalogRecord
	Lending catalog.LendingStatus
}

// Result is one page of catalog rows with pagination metadata. The total
// always reflects the full filtered set, not the page.
type Result struct {
	Rows       []Row
	Pagination catalog.Pagination
}

// Engine executes catalog queries. The count and the page query run under
// the same predicate, so the pagination metadata always matches the filter.
type Engine struct {
	finder  RecordFinder
	lending LendingResolver
}

// NewEngine creates a new Engine from a record finder and a lending resolver.
func NewEngine(finder RecordFinder, lending LendingResolver) Engine {
	return Engine{
		finder:  finder,
		lending: lending,
	}
}

// Find returns the page of records selected by the spec, enriched with
// lending status for exactly the page's book numbers. A page beyond the last
// one yields an empty result with intact pagination metadata.
func (e Engine) Find(ctx context.Context, session catalog.Session, spec catalog.FindSpec) (Result, error) {
	var empty Result

	total, countErr := e.finder.CountRecords(ctx, spec.WithoutPagination())
	if countErr != nil {
		return empty, countErr
	}

	pagination := paginationFor(spec, total)

	result := Result{
		Rows:       make([]Row, 0),
		Pagination: pagination,
	}

	if total == 0 || spec.Page() > pagination.TotalPages {
		return result, nil
	}

	records, findErr := e.finder.FindRecords(ctx, spec)
	if findErr != nil {
		return empty, findErr
	}

	statuses, statusErr := e.lending.StatusForPage(ctx, session, bookNumbersOf(records))
	if statusErr != nil {
		return empty, statusErr
	}

	for _, record := range records {
		result.Rows = append(result.Rows, Row{
			Record:  record,
			Lending: statuses[record.Number],
		})
	}

	return result, nil
}

func paginationFor(spec catalog.FindSpec, total int64) catalog.Pagination {
	pageSize := spec.PageSize()
	if pageSize <= 0 {
		// a zero-value spec never went through the builder defaults
		pageSize = catalog.DefaultPageSize
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return catalog.Pagination{
		Page:       spec.Page(),
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    spec.Page() < totalPages,
		HasPrev:    spec.Page() > 1,
	}
}

func bookNumbersOf(records []catalog.CatalogRecord) []int64 {
	bookNumbers := make([]int64, len(records))
	for i, record := range records {
		bookNumbers[i] = record.Number
	}

	return bookNumbers
}
