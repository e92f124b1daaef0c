// Package assign derives book numbers, group counters, and composite ids
// for catalog records, both for newly created records and for updates that
// move a record between grouping dimensions.
package assign

import (
	"context"

	"github.com/librarium-io/library-catalog-go/catalog"
)

// CounterStore defines the interface needed by the Assigner for counter and
// grouping lookups.
type CounterStore interface {
	MaxBookNumber(ctx context.Context) (int64, error)
	CountByCategory(ctx context.Context, category catalog.Category, excludeID string) (int64, error)
	CountByTitleGroup(ctx context.Context, category catalog.Category, title string, excludeID string) (int64, error)
	TitleGroupIndex(ctx context.Context, category catalog.Category, title string, excludeID string) (int, error)
	MaxCategoryIndex(ctx context.Context, category catalog.Category) (int, error)
}

// Assignment carries the derived fields for a new catalog record.
type Assignment struct {
	Number        int64
	ID            string
	TitleCount    int
	CategoryCount int
	CategoryIndex int
}

// Assigner derives identity fields from the current catalog state.
// The read-then-write window between deriving and persisting is accepted:
// the original system runs behind a single librarian desk, and the store
// enforces nothing beyond uniqueness of the number column.
type Assigner struct {
	store CounterStore
}

// NewAssigner creates a new Assigner backed by the given counter store.
func NewAssigner(store CounterStore) Assigner {
	return Assigner{store: store}
}

// ForCreate derives all identity fields for a record about to be created:
// the next book number, the per-category and per-title-group counters, the
// category index (reused from the title group when it already has members,
// freshly allocated otherwise), and the composite id.
func (a Assigner) ForCreate(
	ctx context.Context,
	category catalog.Category,
	title string,
	languages []catalog.Language,
) (Assignment, error) {

	var empty Assignment

	maxNumber, maxErr := a.store.MaxBookNumber(ctx)
	if maxErr != nil {
		return empty, maxErr
	}
	number := maxNumber + 1

	categoryTotal, catErr := a.store.CountByCategory(ctx, category, "")
	if catErr != nil {
		return empty, catErr
	}
	categoryCount := int(categoryTotal) + 1

	groupTotal, groupErr := a.store.CountByTitleGroup(ctx, category, title, "")
	if groupErr != nil {
		return empty, groupErr
	}
	titleCount := int(groupTotal) + 1

	categoryIndex, indexErr := a.categoryIndexFor(ctx, category, title, titleCount, "")
	if indexErr != nil {
		return empty, indexErr
	}

	return Assignment{
		Number:        number,
		ID:            catalog.ComposeRecordID(number, category, languages, categoryIndex, titleCount),
		TitleCount:    titleCount,
		CategoryCount: categoryCount,
		CategoryIndex: categoryIndex,
	}, nil
}

// ForUpdate augments the given changes with recomputed grouping counters and
// a regenerated composite id, with the record itself excluded from all
// counts. A category change recomputes the category count; a category or
// title change recomputes the title count and category index; a
// language-only change keeps the current counters. The id is regenerated
// unconditionally since it embeds the effective values. The book number
// never changes.
func (a Assigner) ForUpdate(
	ctx context.Context,
	current catalog.CatalogRecord,
	changes catalog.RecordChanges,
) (catalog.RecordChanges, error) {

	effectiveCategory := current.Category
	if changes.Category != nil {
		effectiveCategory = *changes.Category
	}

	effectiveTitle := current.Title
	if changes.Title != nil {
		effectiveTitle = *changes.Title
	}

	effectiveLanguages := current.Languages
	if changes.Languages != nil {
		effectiveLanguages = changes.Languages
	}

	categoryChanged := changes.Category != nil && *changes.Category != current.Category
	titleChanged := changes.Title != nil && *changes.Title != current.Title

	titleCount := current.TitleCount
	categoryIndex := current.CategoryIndex

	if categoryChanged {
		categoryTotal, catErr := a.store.CountByCategory(ctx, effectiveCategory, current.ID)
		if catErr != nil {
			return catalog.RecordChanges{}, catErr
		}
		categoryCount := int(categoryTotal) + 1

		changes.CategoryCount = &categoryCount
	}

	if categoryChanged || titleChanged {
		groupTotal, groupErr := a.store.CountByTitleGroup(ctx, effectiveCategory, effectiveTitle, current.ID)
		if groupErr != nil {
			return catalog.RecordChanges{}, groupErr
		}
		titleCount = int(groupTotal) + 1

		var indexErr error
		categoryIndex, indexErr = a.categoryIndexFor(ctx, effectiveCategory, effectiveTitle, titleCount, current.ID)
		if indexErr != nil {
			return catalog.RecordChanges{}, indexErr
		}

		changes.TitleCount = &titleCount
		changes.CategoryIndex = &categoryIndex
	}

	id := catalog.ComposeRecordID(current.Number, effectiveCategory, effectiveLanguages, categoryIndex, titleCount)
	changes.ID = &id

	return changes, nil
}

// categoryIndexFor reuses the title group's index when the group already has
// other members and allocates the next free index in the category otherwise.
func (a Assigner) categoryIndexFor(
	ctx context.Context,
	category catalog.Category,
	title string,
	titleCount int,
	excludeID string,
) (int, error) {

	if titleCount > 1 {
		return a.store.TitleGroupIndex(ctx, category, title, excludeID)
	}

	maxIndex, indexErr := a.store.MaxCategoryIndex(ctx, category)
	if indexErr != nil {
		return 0, indexErr
	}

	return maxIndex + 1, nil
}
