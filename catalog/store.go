package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RecordStore is the narrow port every component uses to reach the
// persistent catalog, checkouts and identity relations. The Postgres
// implementation lives in the postgresengine package; tests use an
// in-memory implementation.
//
// Every call is a suspension point; implementations must be safe for
// concurrent use. No component caches records across requests.
type RecordStore interface {
	// FindRecords returns the page of records selected by the spec,
	// ordered by relevance when text search terms are active and by
	// ascending number otherwise.
	FindRecords(ctx context.Context, spec FindSpec) ([]CatalogRecord, error)

	// CountRecords counts the records matching the spec's filter
	// dimensions, ignoring its pagination.
	CountRecords(ctx context.Context, spec FindSpec) (int64, error)

	// GetRecord loads one record by its composite id.
	// Returns ErrNotFound when the id does not exist.
	GetRecord(ctx context.Context, id string) (CatalogRecord, error)

	InsertRecord(ctx context.Context, record CatalogRecord) error

	// UpdateRecord applies a partial change set to the record with the
	// given composite id. Returns ErrNotFound when the id does not exist.
	UpdateRecord(ctx context.Context, id string, changes RecordChanges) error

	// DeleteRecord removes the record outright.
	// Returns ErrNotFound when the id does not exist.
	DeleteRecord(ctx context.Context, id string) error

	// MaxBookNumber returns the highest assigned number, 0 for an empty catalog.
	MaxBookNumber(ctx context.Context) (int64, error)

	// CountByCategory counts records in a category; excludeID (when non-empty)
	// leaves one record out of its own count during an update.
	CountByCategory(ctx context.Context, category Category, excludeID string) (int64, error)

	// CountByTitleGroup counts records sharing exactly (category, title).
	CountByTitleGroup(ctx context.Context, category Category, title string, excludeID string) (int64, error)

	// TitleGroupIndex returns the categoryIndex already assigned to the
	// (category, title) group, or 0 when no such group exists.
	TitleGroupIndex(ctx context.Context, category Category, title string, excludeID string) (int, error)

	// MaxCategoryIndex returns the highest categoryIndex observed within a
	// category, 0 when the category is empty.
	MaxCategoryIndex(ctx context.Context, category Category) (int, error)

	// ActiveCheckouts returns the unreturned checkout rows for exactly the
	// given book numbers.
	ActiveCheckouts(ctx context.Context, bookNumbers []int64) ([]CheckoutRecord, error)

	// InsertCheckout records a new checkout. The write itself must guard
	// lending exclusivity: if an active row already exists for the book,
	// no row is inserted and ErrAlreadyCheckedOut is returned.
	InsertCheckout(ctx context.Context, bookNumber int64, holderID uuid.UUID, at time.Time) error

	// MarkReturned sets returned_at on the active row matching
	// (bookNumber, holderID) and reports how many rows were affected.
	// Zero means there was no such active checkout.
	MarkReturned(ctx context.Context, bookNumber int64, holderID uuid.UUID, at time.Time) (int64, error)

	// ResolveIdentities maps holder ids to their presentable identities.
	// Unknown ids are simply absent from the result.
	ResolveIdentities(ctx context.Context, holderIDs []uuid.UUID) (map[uuid.UUID]Identity, error)
}
