// Package backend is the exposed operation surface of the library catalog.
// It fronts the search, manage, and lending components with one facade,
// enforces the privilege gate on catalog mutations, and reports mutation
// outcomes as result objects instead of bare errors.
package backend

import (
	"context"

	"github.com/librarium-io/library-catalog-go/catalog"
	"github.com/librarium-io/library-catalog-go/catalog/manage"
	"github.com/librarium-io/library-catalog-go/catalog/search"
)

// Searcher defines the interface needed by the Backend for catalog queries.
type Searcher interface {
	Find(ctx context.Context, session catalog.Session, spec catalog.FindSpec) (search.Result, error)
}

// Mutator defines the interface needed by the Backend for catalog mutations.
type Mutator interface {
	Create(ctx context.Context, input manage.CreateInput) (catalog.CatalogRecord, error)
	Update(ctx context.Context, id string, changes catalog.RecordChanges) (catalog.CatalogRecord, error)
	Delete(ctx context.Context, id string) error
}

// Lender defines the interface needed by the Backend for checkout operations.
type Lender interface {
	Checkout(ctx context.Context, session catalog.Session, bookNumber int64) error
	Return(ctx context.Context, session catalog.Session, bookNumber int64) error
}

// MutationResult represents the outcome of a mutation. Expected rejections
// (validation, missing records, lending conflicts, authorization) travel in
// Err next to genuine store failures; Success is the single flag callers
// branch on.
type MutationResult struct {
	Success bool
	Record  *catalog.CatalogRecord
	Err     error
}

// NewSuccessResult creates a MutationResult for successful operations.
func NewSuccessResult(record *catalog.CatalogRecord) MutationResult {
	return MutationResult{
		Success: true,
		Record:  record,
	}
}

// NewErrorResult creates a MutationResult for failed operations.
func NewErrorResult(err error) MutationResult {
	return MutationResult{
		Err: err,
	}
}

// Backend fronts the catalog components as one surface.
type Backend struct {
	searcher Searcher
	mutator  Mutator
	lender   Lender
}

// New creates a Backend from the three component surfaces.
func New(searcher Searcher, mutator Mutator, lender Lender) Backend {
	return Backend{
		searcher: searcher,
		mutator:  mutator,
		lender:   lender,
	}
}

// FindCatalog runs a catalog query. Reading is open to every session,
// including anonymous ones.
func (b Backend) FindCatalog(ctx context.Context, session catalog.Session, spec catalog.FindSpec) (search.Result, error) {
	return b.searcher.Find(ctx, session, spec)
}

// CreateCatalogItem creates a new catalog record. Only privileged sessions
// may mutate catalog data.
func (b Backend) CreateCatalogItem(ctx context.Context, session catalog.Session, input manage.CreateInput) MutationResult {
	if !session.IsPrivileged() {
		return NewErrorResult(catalog.ErrNotPrivileged)
	}

	record, createErr := b.mutator.Create(ctx, input)
	if createErr != nil {
		return NewErrorResult(createErr)
	}

	return NewSuccessResult(&record)
}

// UpdateCatalogItem updates the record carrying the id. Only privileged
// sessions may mutate catalog data.
func (b Backend) UpdateCatalogItem(
	ctx context.Context,
	session catalog.Session,
	id string,
	changes catalog.RecordChanges,
) MutationResult {

	if !session.IsPrivileged() {
		return NewErrorResult(catalog.ErrNotPrivileged)
	}

	record, updateErr := b.mutator.Update(ctx, id, changes)
	if updateErr != nil {
		return NewErrorResult(updateErr)
	}

	return NewSuccessResult(&record)
}

// DeleteCatalogItem removes the record carrying the id. Only privileged
// sessions may mutate catalog data.
func (b Backend) DeleteCatalogItem(ctx context.Context, session catalog.Session, id string) MutationResult {
	if !session.IsPrivileged() {
		return NewErrorResult(catalog.ErrNotPrivileged)
	}

	if deleteErr := b.mutator.Delete(ctx, id); deleteErr != nil {
		return NewErrorResult(deleteErr)
	}

	return NewSuccessResult(nil)
}

// CheckoutItem checks the book out to the session holder. Any authenticated
// session may borrow; the privilege gate applies to catalog mutations only.
func (b Backend) CheckoutItem(ctx context.Context, session catalog.Session, bookNumber int64) MutationResult {
	if checkoutErr := b.lender.Checkout(ctx, session, bookNumber); checkoutErr != nil {
		return NewErrorResult(checkoutErr)
	}

	return NewSuccessResult(nil)
}

// ReturnItem closes the session holder's active checkout on the book.
func (b Backend) ReturnItem(ctx context.Context, session catalog.Session, bookNumber int64) MutationResult {
	if returnErr := b.lender.Return(ctx, session, bookNumber); returnErr != nil {
		return NewErrorResult(returnErr)
	}

	return NewSuccessResult(nil)
}
