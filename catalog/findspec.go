package catalog

import (
	"slices"
	"strings"
)

// DefaultPageSize is used when a FindSpec does not set an explicit page size.
const DefaultPageSize = 100

// SearchCriteria identifies which record dimension a criteria query matches against.
type SearchCriteria string

const (
	SearchByTitle    = SearchCriteria("title")
	SearchByCategory = SearchCriteria("category")
	SearchByLanguage = SearchCriteria("language")
	SearchByAuthor   = SearchCriteria("author")
	SearchByYear     = SearchCriteria("year")
)

var allSearchCriteria = []SearchCriteria{
	SearchByTitle, SearchByCategory, SearchByLanguage, SearchByAuthor, SearchByYear,
}

// CriteriaQuery is one (criteria, term) restriction. All queries supplied to a
// FindSpec are conjoined: a record must satisfy every one of them.
type CriteriaQuery struct {
	criteria SearchCriteria
	term     string
}

// Q builds a CriteriaQuery.
func Q(criteria SearchCriteria, term string) CriteriaQuery {
	return CriteriaQuery{criteria: criteria, term: term}
}

func (cq CriteriaQuery) Criteria() SearchCriteria {
	return cq.criteria
}

func (cq CriteriaQuery) Term() string {
	return cq.term
}

// YearRange restricts publication years to [Min, Max] inclusive.
type YearRange struct {
	Min int
	Max int
}

/***** FindSpec *****/

// FindSpec is the typed query configuration for the catalog: every filter
// dimension, the free-text searches and the pagination, each explicitly
// cased and defaulted. All dimensions are conjoined; within the category
// and language sets, membership semantics apply (IN for categories,
// set-overlap for languages). An absent or empty dimension imposes no
// restriction.
//
// A FindSpec is built with BuildFindSpec and is immutable afterwards.
type FindSpec struct {
	categories   []Category
	languages    []Language
	yearRange    *YearRange
	queries      []CriteriaQuery
	titleSearch  string
	idSearch     string
	authorSearch string
	page         int
	pageSize     int
}

func (fs FindSpec) Categories() []Category {
	return fs.categories
}

func (fs FindSpec) Languages() []Language {
	return fs.languages
}

func (fs FindSpec) YearRange() *YearRange {
	return fs.yearRange
}

func (fs FindSpec) Queries() []CriteriaQuery {
	return fs.queries
}

func (fs FindSpec) TitleSearch() string {
	return fs.titleSearch
}

func (fs FindSpec) IDSearch() string {
	return fs.idSearch
}

func (fs FindSpec) AuthorSearch() string {
	return fs.authorSearch
}

func (fs FindSpec) Page() int {
	return fs.page
}

func (fs FindSpec) PageSize() int {
	return fs.pageSize
}

// Offset is the number of rows the page skips.
func (fs FindSpec) Offset() int {
	return (fs.page - 1) * fs.pageSize
}

// RelevanceTerms collects the text terms that participate in relevance
// ranking: the free-text title/id/author searches plus the terms of
// substring-matched criteria queries. Exact-match criteria (language, year)
// contribute no fuzziness and are excluded.
func (fs FindSpec) RelevanceTerms() []string {
	terms := make([]string, 0, len(fs.queries)+3)

	for _, q := range fs.queries {
		switch q.criteria {
		case SearchByTitle, SearchByCategory, SearchByAuthor:
			terms = append(terms, q.term)
		case SearchByLanguage, SearchByYear:
			// exact filters, nothing to rank
		}
	}

	for _, term := range []string{fs.titleSearch, fs.idSearch, fs.authorSearch} {
		if term != "" {
			terms = append(terms, term)
		}
	}

	slices.Sort(terms)

	return slices.Compact(terms)
}

// WithoutPagination returns a copy of the spec covering the entire filtered
// set, used to run the companion count query under the same predicate.
func (fs FindSpec) WithoutPagination() FindSpec {
	withoutPagination := fs
	withoutPagination.page = 1
	withoutPagination.pageSize = 0

	return withoutPagination
}

/***** FindSpecBuilder *****/

// FindSpecBuilder assembles a FindSpec and must eventually be finalized
// with Finalize().
//
// It sanitizes its input:
//   - code sets are sorted and deduplicated
//   - a set containing the All sentinel collapses to "no restriction"
//   - criteria queries with an unknown criteria or an empty term are dropped
//   - free-text terms are trimmed, empty ones dropped
//   - page is clamped to >= 1, page size defaults to DefaultPageSize
type FindSpecBuilder struct {
	spec FindSpec
}

// BuildFindSpec starts a builder for an unrestricted first-page spec.
func BuildFindSpec() FindSpecBuilder {
	return FindSpecBuilder{
		spec: FindSpec{
			page:     1,
			pageSize: DefaultPageSize,
		},
	}
}

// AnyCategoryOf restricts results to records whose category is in the given set.
func (b FindSpecBuilder) AnyCategoryOf(category Category, categories ...Category) FindSpecBuilder {
	all := append([]Category{category}, categories...)

	if slices.Contains(all, CategoryAll) {
		b.spec.categories = nil
		return b
	}

	all = slices.DeleteFunc(all, func(c Category) bool { return !c.IsValid() })
	slices.Sort(all)
	b.spec.categories = slices.Clip(slices.Compact(all))

	return b
}

// AnyLanguageOf restricts results to records whose language set overlaps the given set.
func (b FindSpecBuilder) AnyLanguageOf(language Language, languages ...Language) FindSpecBuilder {
	all := append([]Language{language}, languages...)

	if slices.Contains(all, LanguageAll) {
		b.spec.languages = nil
		return b
	}

	all = slices.DeleteFunc(all, func(l Language) bool { return !l.IsValid() })
	slices.Sort(all)
	b.spec.languages = slices.Clip(slices.Compact(all))

	return b
}

// PublishedBetween restricts publication years to [min, max] inclusive.
// The bounds are swapped when supplied in the wrong order.
func (b FindSpecBuilder) PublishedBetween(min int, max int) FindSpecBuilder {
	if min > max {
		min, max = max, min
	}

	b.spec.yearRange = &YearRange{Min: min, Max: max}

	return b
}

// MatchingQueries conjoins criteria queries onto the spec in the given order.
func (b FindSpecBuilder) MatchingQueries(query CriteriaQuery, queries ...CriteriaQuery) FindSpecBuilder {
	all := append([]CriteriaQuery{query}, queries...)

	for _, q := range all {
		q.term = strings.TrimSpace(q.term)
		if q.term == "" || !slices.Contains(allSearchCriteria, q.criteria) {
			continue
		}

		b.spec.queries = append(b.spec.queries, q)
	}

	return b
}

// WithTitleSearch adds a free-text substring restriction on the title.
func (b FindSpecBuilder) WithTitleSearch(term string) FindSpecBuilder {
	b.spec.titleSearch = strings.TrimSpace(term)
	return b
}

// WithIDSearch adds a free-text substring restriction on the composite id.
func (b FindSpecBuilder) WithIDSearch(term string) FindSpecBuilder {
	b.spec.idSearch = strings.TrimSpace(term)
	return b
}

// WithAuthorSearch adds a free-text restriction matching either author name field.
func (b FindSpecBuilder) WithAuthorSearch(term string) FindSpecBuilder {
	b.spec.authorSearch = strings.TrimSpace(term)
	return b
}

// OnPage selects the 1-based result page.
func (b FindSpecBuilder) OnPage(page int) FindSpecBuilder {
	if page < 1 {
		page = 1
	}

	b.spec.page = page

	return b
}

// WithPageSize overrides the default page size.
func (b FindSpecBuilder) WithPageSize(pageSize int) FindSpecBuilder {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	b.spec.pageSize = pageSize

	return b
}

// Finalize returns the assembled FindSpec.
func (b FindSpecBuilder) Finalize() FindSpec {
	return b.spec
}
