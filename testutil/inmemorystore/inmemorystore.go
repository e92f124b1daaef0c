// Package inmemorystore provides an in-memory catalog.RecordStore for
// hermetic tests. It honors the same semantics as the Postgres engine:
// filter dimensions, relevance ranking, pagination, lending exclusivity,
// and identity resolution.
package inmemorystore

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/librarium-io/library-catalog-go/catalog"
)

// InMemoryStore implements catalog.RecordStore on slices and maps guarded by
// one mutex. It is safe for concurrent use.
type InMemoryStore struct {
	mu         sync.RWMutex
	records    []catalog.CatalogRecord
	checkouts  []catalog.CheckoutRecord
	identities map[uuid.UUID]catalog.Identity
}

// NewInMemoryStore creates an empty store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		identities: make(map[uuid.UUID]catalog.Identity),
	}
}

// RegisterIdentity makes a holder resolvable, as rows in the users table
// would be.
func (s *InMemoryStore) RegisterIdentity(holderID uuid.UUID, identity catalog.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identities[holderID] = identity
}

// FindRecords returns the spec's page, ordered by relevance while a text
// search is active and by book number otherwise.
func (s *InMemoryStore) FindRecords(_ context.Context, spec catalog.FindSpec) ([]catalog.CatalogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.matchedBy(spec)
	orderRecords(matched, spec.RelevanceTerms())

	start := spec.Offset()
	if start >= len(matched) {
		return []catalog.CatalogRecord{}, nil
	}

	end := len(matched)
	if spec.PageSize() > 0 && start+spec.PageSize() < end {
		end = start + spec.PageSize()
	}

	page := make([]catalog.CatalogRecord, end-start)
	copy(page, matched[start:end])

	return page, nil
}

// CountRecords counts the records selected by the spec, ignoring pagination.
func (s *InMemoryStore) CountRecords(_ context.Context, spec catalog.FindSpec) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.matchedBy(spec))), nil
}

// GetRecord returns the record carrying the id or catalog.ErrNotFound.
func (s *InMemoryStore) GetRecord(_ context.Context, id string) (catalog.CatalogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.records {
		if record.ID == id {
			return record, nil
		}
	}

	return catalog.CatalogRecord{}, catalog.ErrNotFound
}

// InsertRecord stores the record.
func (s *InMemoryStore) InsertRecord(_ context.Context, record catalog.CatalogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)

	return nil
}

// UpdateRecord applies the changes to the record carrying the id.
func (s *InMemoryStore) UpdateRecord(_ context.Context, id string, changes catalog.RecordChanges) error {
	if changes.IsEmpty() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, record := range s.records {
		if record.ID == id {
			s.records[i] = applyChanges(record, changes)
			return nil
		}
	}

	return catalog.ErrNotFound
}

// DeleteRecord removes the record carrying the id. All other records are
// left untouched.
func (s *InMemoryStore) DeleteRecord(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, record := range s.records {
		if record.ID == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return nil
		}
	}

	return catalog.ErrNotFound
}

// MaxBookNumber returns the highest assigned book number, zero when empty.
func (s *InMemoryStore) MaxBookNumber(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var maxNumber int64
	for _, record := range s.records {
		if record.Number > maxNumber {
			maxNumber = record.Number
		}
	}

	return maxNumber, nil
}

// CountByCategory counts records in the category, excluding excludeID when
// non-empty.
func (s *InMemoryStore) CountByCategory(_ context.Context, category catalog.Category, excludeID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if record.Category == category && (excludeID == "" || record.ID != excludeID) {
			count++
		}
	}

	return count, nil
}

// CountByTitleGroup counts records sharing category and title, excluding
// excludeID when non-empty.
func (s *InMemoryStore) CountByTitleGroup(
	_ context.Context,
	category catalog.Category,
	title string,
	excludeID string,
) (int64, error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, record := range s.records {
		if record.Category == category && record.Title == title && (excludeID == "" || record.ID != excludeID) {
			count++
		}
	}

	return count, nil
}

// TitleGroupIndex returns the category index of the title group's first
// member, zero when the group is empty.
func (s *InMemoryStore) TitleGroupIndex(
	_ context.Context,
	category catalog.Category,
	title string,
	excludeID string,
) (int, error) {

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, record := range s.records {
		if record.Category == category && record.Title == title && (excludeID == "" || record.ID != excludeID) {
			return record.CategoryIndex, nil
		}
	}

	return 0, nil
}

// MaxCategoryIndex returns the highest category index in the category, zero
// when the category has no records.
func (s *InMemoryStore) MaxCategoryIndex(_ context.Context, category catalog.Category) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	maxIndex := 0
	for _, record := range s.records {
		if record.Category == category && record.CategoryIndex > maxIndex {
			maxIndex = record.CategoryIndex
		}
	}

	return maxIndex, nil
}

// ActiveCheckouts returns the not-yet-returned checkouts for the given books.
func (s *InMemoryStore) ActiveCheckouts(_ context.Context, bookNumbers []int64) ([]catalog.CheckoutRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[int64]struct{}, len(bookNumbers))
	for _, number := range bookNumbers {
		wanted[number] = struct{}{}
	}

	active := make([]catalog.CheckoutRecord, 0)
	for _, checkout := range s.checkouts {
		if _, ok := wanted[checkout.BookNumber]; ok && checkout.Active() {
			active = append(active, checkout)
		}
	}

	return active, nil
}

// InsertCheckout records a checkout unless the book is absent from the
// catalog or already has an active checkout. The whole check-and-insert runs
// under the write lock, mirroring the atomicity of the conditional insert in
// the Postgres engine.
func (s *InMemoryStore) InsertCheckout(_ context.Context, bookNumber int64, holderID uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bookExists := false
	for _, record := range s.records {
		if record.Number == bookNumber {
			bookExists = true
			break
		}
	}

	if !bookExists {
		return catalog.ErrNotFound
	}

	for _, checkout := range s.checkouts {
		if checkout.BookNumber == bookNumber && checkout.Active() {
			return catalog.ErrAlreadyCheckedOut
		}
	}

	s.checkouts = append(s.checkouts, catalog.CheckoutRecord{
		BookNumber:   bookNumber,
		HolderID:     holderID,
		CheckedOutAt: at,
	})

	return nil
}

// MarkReturned closes the holder's active checkout on the book and reports
// how many rows changed.
func (s *InMemoryStore) MarkReturned(_ context.Context, bookNumber int64, holderID uuid.UUID, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, checkout := range s.checkouts {
		if checkout.BookNumber == bookNumber && checkout.HolderID == holderID && checkout.Active() {
			returned := at
			s.checkouts[i].ReturnedAt = &returned

			return 1, nil
		}
	}

	return 0, nil
}

// ResolveIdentities returns the registered identities for the given holders.
func (s *InMemoryStore) ResolveIdentities(_ context.Context, holderIDs []uuid.UUID) (map[uuid.UUID]catalog.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	resolved := make(map[uuid.UUID]catalog.Identity, len(holderIDs))
	for _, holderID := range holderIDs {
		if identity, ok := s.identities[holderID]; ok {
			resolved[holderID] = identity
		}
	}

	return resolved, nil
}

func (s *InMemoryStore) matchedBy(spec catalog.FindSpec) []catalog.CatalogRecord {
	matched := make([]catalog.CatalogRecord, 0, len(s.records))

	for _, record := range s.records {
		if matches(record, spec) {
			matched = append(matched, record)
		}
	}

	return matched
}

func matches(record catalog.CatalogRecord, spec catalog.FindSpec) bool {
	if categories := spec.Categories(); len(categories) > 0 && !containsCategory(categories, record.Category) {
		return false
	}

	if languages := spec.Languages(); len(languages) > 0 && !languagesOverlap(record.Languages, languages) {
		return false
	}

	if yearRange := spec.YearRange(); yearRange != nil {
		if record.PubYear == nil || *record.PubYear < yearRange.Min || *record.PubYear > yearRange.Max {
			return false
		}
	}

	for _, query := range spec.Queries() {
		if !matchesQuery(record, query) {
			return false
		}
	}

	if term := spec.TitleSearch(); term != "" && !containsFold(record.Title, term) {
		return false
	}

	if term := spec.IDSearch(); term != "" && !containsFold(record.ID, term) {
		return false
	}

	if term := spec.AuthorSearch(); term != "" && !matchesAuthor(record, term) {
		return false
	}

	return true
}

func matchesQuery(record catalog.CatalogRecord, query catalog.CriteriaQuery) bool {
	switch query.Criteria() {
	case catalog.SearchByTitle:
		return containsFold(record.Title, query.Term())
	case catalog.SearchByCategory:
		return containsFold(record.Category.String(), query.Term())
	case catalog.SearchByLanguage:
		return containsLanguage(record.Languages, catalog.Language(query.Term()))
	case catalog.SearchByAuthor:
		return matchesAuthor(record, query.Term())
	case catalog.SearchByYear:
		return record.PubYear != nil && strconv.Itoa(*record.PubYear) == query.Term()
	}

	return false
}

// orderRecords sorts by the same relevance score the Postgres engine renders
// in SQL, falling back to ascending book number.
func orderRecords(records []catalog.CatalogRecord, relevanceTerms []string) {
	sort.SliceStable(records, func(i, j int) bool {
		if len(relevanceTerms) > 0 {
			scoreI := relevanceScore(records[i], relevanceTerms)
			scoreJ := relevanceScore(records[j], relevanceTerms)

			if scoreI != scoreJ {
				return scoreI > scoreJ
			}
		}

		return records[i].Number < records[j].Number
	})
}

func relevanceScore(record catalog.CatalogRecord, terms []string) int {
	score := 0

	for _, term := range terms {
		if containsFold(record.Title, term) {
			score += 3
		}

		if matchesAuthor(record, term) {
			score += 2
		}

		if containsFold(record.ID, term) {
			score++
		}
	}

	return score
}

func matchesAuthor(record catalog.CatalogRecord, term string) bool {
	return containsFold(record.FirstName, term) || containsFold(record.LastName, term)
}

func containsFold(haystack string, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func containsCategory(categories []catalog.Category, category catalog.Category) bool {
	for _, c := range categories {
		if c == category {
			return true
		}
	}

	return false
}

func containsLanguage(languages []catalog.Language, language catalog.Language) bool {
	for _, l := range languages {
		if l == language {
			return true
		}
	}

	return false
}

func languagesOverlap(recordLanguages []catalog.Language, filterLanguages []catalog.Language) bool {
	for _, language := range filterLanguages {
		if containsLanguage(recordLanguages, language) {
			return true
		}
	}

	return false
}


func applyChanges(record catalog.CatalogRecord, changes catalog.RecordChanges) catalog.CatalogRecord {
	if changes.Title != nil {
		record.Title = *changes.Title
	}

	if changes.Category != nil {
		record.Category = *changes.Category
	}

	if changes.Languages != nil {
		record.Languages = changes.Languages
	}

	switch {
	case changes.PubYear != nil:
		record.PubYear = changes.PubYear
	case changes.ClearPubYear:
		record.PubYear = nil
	}

	if changes.FirstName != nil {
		record.FirstName = *changes.FirstName
	}

	if changes.LastName != nil {
		record.LastName = *changes.LastName
	}

	switch {
	case changes.Revisions != nil:
		record.Revisions = changes.Revisions
	case changes.ClearRevisions:
		record.Revisions = nil
	}

	if changes.ID != nil {
		record.ID = *changes.ID
	}

	if changes.TitleCount != nil {
		record.TitleCount = *changes.TitleCount
	}

	if changes.CategoryCount != nil {
		record.CategoryCount = *changes.CategoryCount
	}

	if changes.CategoryIndex != nil {
		record.CategoryIndex = *changes.CategoryIndex
	}

	return record
}

// Ensure InMemoryStore implements catalog.RecordStore.
var _ catalog.RecordStore = (*InMemoryStore)(nil)
