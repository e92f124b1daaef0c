package postgresengine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/librarium-io/library-catalog-go/catalog"
)

func catalogColumns() []any {
	return []any{
		colNumber, colID, colTitle, colCategory, colLanguage, colPubYear,
		colFirstName, colLastName, colRevisions, colTitleCount, colCategoryCount, colCategoryIndex,
	}
}

func (s *Store) buildFindQuery(spec catalog.FindSpec) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.catalogTable).
		Select(catalogColumns()...).
		Where(filterExpressions(spec)...)

	if terms := spec.RelevanceTerms(); len(terms) > 0 {
		selectStmt = selectStmt.Order(goqu.L(relevanceExpression(terms)).Desc(), goqu.I(colNumber).Asc())
	} else {
		selectStmt = selectStmt.Order(goqu.I(colNumber).Asc())
	}

	selectStmt = selectStmt.
		Limit(uint(spec.PageSize())).
		Offset(uint(spec.Offset()))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *Store) buildCountQuery(spec catalog.FindSpec) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.catalogTable).
		Select(goqu.COUNT(goqu.Star())).
		Where(filterExpressions(spec)...)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// filterExpressions renders every active filter dimension of the spec into a
// conjoined WHERE clause; absent dimensions contribute nothing.
func filterExpressions(spec catalog.FindSpec) []goqu.Expression {
	exprs := make([]goqu.Expression, 0)

	if categories := spec.Categories(); len(categories) > 0 {
		values := make([]string, len(categories))
		for i, category := range categories {
			values[i] = category.String()
		}

		exprs = append(exprs, goqu.C(colCategory).In(values))
	}

	if languages := spec.Languages(); len(languages) > 0 {
		exprs = append(exprs, goqu.L(fmt.Sprintf("%s && %s", colLanguage, textArrayLiteral(languageStrings(languages)))))
	}

	if yearRange := spec.YearRange(); yearRange != nil {
		exprs = append(exprs,
			goqu.C(colPubYear).Gte(yearRange.Min),
			goqu.C(colPubYear).Lte(yearRange.Max),
		)
	}

	for _, query := range spec.Queries() {
		switch query.Criteria() {
		case catalog.SearchByTitle:
			exprs = append(exprs, goqu.C(colTitle).ILike(containsPattern(query.Term())))

		case catalog.SearchByCategory:
			exprs = append(exprs, goqu.C(colCategory).ILike(containsPattern(query.Term())))

		case catalog.SearchByLanguage:
			exprs = append(exprs, goqu.L(fmt.Sprintf("%s @> %s", colLanguage, textArrayLiteral([]string{query.Term()}))))

		case catalog.SearchByAuthor:
			exprs = append(exprs, authorMatch(query.Term()))

		case catalog.SearchByYear:
			year, convErr := strconv.Atoi(query.Term())
			if convErr != nil {
				exprs = append(exprs, goqu.L(matchNothing))
				continue
			}

			exprs = append(exprs, goqu.C(colPubYear).Eq(year))
		}
	}

	if term := spec.TitleSearch(); term != "" {
		exprs = append(exprs, goqu.C(colTitle).ILike(containsPattern(term)))
	}

	if term := spec.IDSearch(); term != "" {
		exprs = append(exprs, goqu.C(colID).ILike(containsPattern(term)))
	}

	if term := spec.AuthorSearch(); term != "" {
		exprs = append(exprs, authorMatch(term))
	}

	return exprs
}

func authorMatch(term string) goqu.Expression {
	pattern := containsPattern(term)

	return goqu.Or(
		goqu.C(colFirstName).ILike(pattern),
		goqu.C(colLastName).ILike(pattern),
	)
}

// relevanceExpression renders the weighted substring score used to order
// results while any text search is active: per term a title match scores
// highest, then author, then the composite id; ties fall back to the
// ascending number ordering.
func relevanceExpression(terms []string) string {
	parts := make([]string, 0, len(terms)*3)

	for _, term := range terms {
		pattern := quoteLiteral(containsPattern(term))

		parts = append(parts,
			fmt.Sprintf("CASE WHEN %s ILIKE %s THEN %d ELSE 0 END", colTitle, pattern, rankWeightTitle),
			fmt.Sprintf("CASE WHEN %s ILIKE %s OR %s ILIKE %s THEN %d ELSE 0 END",
				colFirstName, pattern, colLastName, pattern, rankWeightAuthor),
			fmt.Sprintf("CASE WHEN %s ILIKE %s THEN %d ELSE 0 END", colID, pattern, rankWeightID),
		)
	}

	return "(" + strings.Join(parts, " + ") + ")"
}

func (s *Store) buildGetRecordQuery(id string) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.catalogTable).
		Select(catalogColumns()...).
		Where(goqu.C(colID).Eq(id)).
		Limit(1)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *Store) buildInsertRecordQuery(record catalog.CatalogRecord) (sqlQueryString, error) {
	row := goqu.Record{
		colNumber:        record.Number,
		colID:            record.ID,
		colTitle:         record.Title,
		colCategory:      record.Category.String(),
		colLanguage:      goqu.L(textArrayLiteral(languageStrings(record.Languages))),
		colFirstName:     record.FirstName,
		colLastName:      record.LastName,
		colTitleCount:    record.TitleCount,
		colCategoryCount: record.CategoryCount,
		colCategoryIndex: record.CategoryIndex,
	}

	if record.PubYear != nil {
		row[colPubYear] = *record.PubYear
	} else {
		row[colPubYear] = nil
	}

	revisions, revErr := revisionsLiteral(record.Revisions)
	if revErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, revErr)
	}
	row[colRevisions] = revisions

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.catalogTable).
		Rows(row)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *Store) buildUpdateRecordQuery(id string, changes catalog.RecordChanges) (sqlQueryString, error) {
	row := goqu.Record{}

	if changes.Title != nil {
		row[colTitle] = *changes.Title
	}

	if changes.Category != nil {
		row[colCategory] = changes.Category.String()
	}

	if changes.Languages != nil {
		row[colLanguage] = goqu.L(textArrayLiteral(languageStrings(changes.Languages)))
	}

	switch {
	case changes.PubYear != nil:
		row[colPubYear] = *changes.PubYear
	case changes.ClearPubYear:
		row[colPubYear] = nil
	}

	if changes.FirstName != nil {
		row[colFirstName] = *changes.FirstName
	}

	if changes.LastName != nil {
		row[colLastName] = *changes.LastName
	}

	switch {
	case changes.Revisions != nil:
		revisions, revErr := revisionsLiteral(changes.Revisions)
		if revErr != nil {
			return "", errors.Join(catalog.ErrBuildingQueryFailed, revErr)
		}
		row[colRevisions] = revisions
	case changes.ClearRevisions:
		row[colRevisions] = nil
	}

	if changes.ID != nil {
		row[colID] = *changes.ID
	}

	if changes.TitleCount != nil {
		row[colTitleCount] = *changes.TitleCount
	}

	if changes.CategoryCount != nil {
		row[colCategoryCount] = *changes.CategoryCount
	}

	if changes.CategoryIndex != nil {
		row[colCategoryIndex] = *changes.CategoryIndex
	}

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(s.catalogTable).
		Set(row).
		Where(goqu.C(colID).Eq(id))

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *Store) buildDeleteRecordQuery(id string) (sqlQueryString, error) {
	deleteStmt := goqu.Dialect(dialectPostgres).
		Delete(s.catalogTable).
		Where(goqu.C(colID).Eq(id))

	sqlQuery, _, toSQLErr := deleteStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *Store) buildActiveCheckoutsQuery(bookNumbers []int64) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.checkoutsTable).
		Select(colBookID, colUserID, colCheckedOutAt, colReturnedAt).
		Where(
			goqu.C(colBookID).In(bookNumbers),
			goqu.C(colReturnedAt).IsNull(),
		)

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// buildInsertCheckoutQuery guards lending inside the statement itself: the
// row is only inserted when the book exists in the catalog and no active
// checkout exists for it, so two concurrent callers cannot both succeed.
// Zero rows affected means either outcome; the store disambiguates with a
// follow-up existence check.
func (s *Store) buildInsertCheckoutQuery(
	bookNumber int64,
	holderID uuid.UUID,
	at time.Time,
) (sqlQueryString, error) {

	builder := goqu.Dialect(dialectPostgres)

	activeStmt := builder.
		From(s.checkoutsTable).
		Select(goqu.L("1")).
		Where(
			goqu.C(colBookID).Eq(bookNumber),
			goqu.C(colReturnedAt).IsNull(),
		)

	activeSQL, _, activeErr := activeStmt.ToSQL()
	if activeErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, activeErr)
	}

	bookStmt := builder.
		From(s.catalogTable).
		Select(goqu.L("1")).
		Where(goqu.C(colNumber).Eq(bookNumber))

	bookSQL, _, bookErr := bookStmt.ToSQL()
	if bookErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, bookErr)
	}

	selectStmt := builder.
		Select(goqu.V(bookNumber), goqu.V(holderID.String()), goqu.V(at)).
		Where(goqu.L("EXISTS (" + bookSQL + ") AND NOT EXISTS (" + activeSQL + ")"))

	insertStmt := builder.
		Insert(s.checkoutsTable).
		Cols(colBookID, colUserID, colCheckedOutAt).
		FromQuery(selectStmt)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *Store) buildCountBookNumberQuery(bookNumber int64) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.catalogTable).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colNumber).Eq(bookNumber))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *Store) buildMarkReturnedQuery(
	bookNumber int64,
	holderID uuid.UUID,
	at time.Time,
) (sqlQueryString, error) {

	updateStmt := goqu.Dialect(dialectPostgres).
		Update(s.checkoutsTable).
		Set(goqu.Record{colReturnedAt: at}).
		Where(
			goqu.C(colBookID).Eq(bookNumber),
			goqu.C(colUserID).Eq(holderID.String()),
			goqu.C(colReturnedAt).IsNull(),
		)

	sqlQuery, _, toSQLErr := updateStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *Store) buildResolveIdentitiesQuery(holderIDs []uuid.UUID) (sqlQueryString, error) {
	values := make([]string, len(holderIDs))
	for i, holderID := range holderIDs {
		values[i] = holderID.String()
	}

	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.usersTable).
		Select(colUserPK, colUserName, colUserEmail, colUserPhone).
		Where(goqu.C(colUserPK).In(values))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *Store) buildMaxBookNumberQuery() (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.catalogTable).
		Select(goqu.COALESCE(goqu.MAX(colNumber), 0).As(aliasMaxNumber))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *Store) buildCountByCategoryQuery(category catalog.Category, excludeID string) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.catalogTable).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.C(colCategory).Eq(category.String()))

	if excludeID != "" {
		selectStmt = selectStmt.Where(goqu.C(colID).Neq(excludeID))
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *Store) buildCountByTitleGroupQuery(
	category catalog.Category,
	title string,
	excludeID string,
) (sqlQueryString, error) {

	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.catalogTable).
		Select(goqu.COUNT(goqu.Star())).
		Where(
			goqu.C(colCategory).Eq(category.String()),
			goqu.C(colTitle).Eq(title),
		)

	if excludeID != "" {
		selectStmt = selectStmt.Where(goqu.C(colID).Neq(excludeID))
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *Store) buildTitleGroupIndexQuery(
	category catalog.Category,
	title string,
	excludeID string,
) (sqlQueryString, error) {

	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.catalogTable).
		Select(colCategoryIndex).
		Where(
			goqu.C(colCategory).Eq(category.String()),
			goqu.C(colTitle).Eq(title),
		).
		Limit(1)

	if excludeID != "" {
		selectStmt = selectStmt.Where(goqu.C(colID).Neq(excludeID))
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func (s *Store) buildMaxCategoryIndexQuery(category catalog.Category) (sqlQueryString, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(s.catalogTable).
		Select(goqu.COALESCE(goqu.MAX(colCategoryIndex), 0).As(aliasMaxIndex)).
		Where(goqu.C(colCategory).Eq(category.String()))

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(catalog.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

func containsPattern(term string) string {
	return "%" + term + "%"
}

// quoteLiteral renders a string as a single-quoted SQL literal for the few
// places that are assembled outside goqu's own value rendering.
func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

func languageStrings(languages []catalog.Language) []string {
	values := make([]string, len(languages))
	for i, language := range languages {
		values[i] = language.String()
	}

	return values
}

func textArrayLiteral(values []string) string {
	if len(values) == 0 {
		return "'{}'::text[]"
	}

	quoted := make([]string, len(values))
	for i, value := range values {
		quoted[i] = quoteLiteral(value)
	}

	return "ARRAY[" + strings.Join(quoted, ",") + "]::text[]"
}

// revisionsLiteral renders the revision-tag set as a jsonb literal, nil for
// records without annotations.
func revisionsLiteral(revisions []catalog.RevisionTag) (any, error) {
	if revisions == nil {
		return nil, nil
	}

	encoded, marshalErr := jsoniter.ConfigFastest.MarshalToString(revisions)
	if marshalErr != nil {
		return nil, marshalErr
	}

	return goqu.L(quoteLiteral(encoded) + "::jsonb"), nil
}
