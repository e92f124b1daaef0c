package postgresengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"

	"github.com/librarium-io/library-catalog-go/catalog"
	"github.com/librarium-io/library-catalog-go/catalog/postgresengine/internal/adapters"
)

const (
	defaultCatalogTableName   = "catalog"
	defaultCheckoutsTableName = "checkouts"
	defaultUsersTableName     = "users"

	colNumber        = "number"
	colID            = "id"
	colTitle         = "title"
	colCategory      = "category"
	colLanguage      = "language"
	colPubYear       = "pubyear"
	colFirstName     = "firstname"
	colLastName      = "lastname"
	colRevisions     = "editedtranslated"
	colTitleCount    = "titlecount"
	colCategoryCount = "categorycount"
	colCategoryIndex = "categoryindex"

	colBookID       = "book_id"
	colUserID       = "user_id"
	colCheckedOutAt = "checked_out_at"
	colReturnedAt   = "returned_at"

	colUserPK    = "id"
	colUserName  = "name"
	colUserEmail = "email"
	colUserPhone = "phone"

	dialectPostgres = "postgres"
	aliasMaxNumber  = "max_number"
	aliasMaxIndex   = "max_index"
	matchNothing    = "1 = 0"

	rankWeightTitle  = 3
	rankWeightAuthor = 2
	rankWeightID     = 1

	logMsgBuildQueryFailed   = "failed to build sql query"
	logMsgDBQueryFailed      = "database query execution failed"
	logMsgDBExecFailed       = "database execution failed"
	logMsgCloseRowsFailed    = "failed to close database rows"
	logMsgScanRowFailed      = "failed to scan database row"
	logMsgRowsAffectedFailed = "failed to get rows affected count"
	logMsgCheckoutConflict   = "checkout conflict detected"
	logMsgSQLExecuted        = "executed sql"
	logMsgOperation          = "catalog store operation: "

	logAttrError        = "error"
	logAttrQuery        = "query"
	logAttrRecordCount  = "record_count"
	logAttrRowsAffected = "rows_affected"
	logAttrDurationMS   = "duration_ms"
	logAttrRecordID     = "record_id"
	logAttrBookNumber   = "book_number"

	metricOperationDuration = "catalog_store_operation_duration"
	metricRecordsReturned   = "catalog_store_records_returned"
	metricDatabaseErrors    = "catalog_store_database_errors"
	metricCheckoutConflicts = "catalog_store_checkout_conflicts"

	spanNamePrefix    = "catalog_store."
	spanAttrOperation = "operation"
	spanAttrErrorType = "error_type"
	spanAttrDurationM = "duration_ms"
	labelStatus       = "status"
	labelConflictType = "conflict_type"

	statusSuccess = "success"
	statusError   = "error"

	errorTypeBuildQuery   = "build_query"
	errorTypeQuery        = "query"
	errorTypeExec         = "exec"
	errorTypeScan         = "scan"
	errorTypeRowsAffected = "rows_affected"
	errorTypeNotFound     = "not_found"
	errorTypeConflict     = "checkout_conflict"

	opFindRecords       = "find_records"
	opCountRecords      = "count_records"
	opGetRecord         = "get_record"
	opInsertRecord      = "insert_record"
	opUpdateRecord      = "update_record"
	opDeleteRecord      = "delete_record"
	opMaxBookNumber     = "max_book_number"
	opCountByCategory   = "count_by_category"
	opCountByTitleGroup = "count_by_title_group"
	opTitleGroupIndex   = "title_group_index"
	opMaxCategoryIndex  = "max_category_index"
	opActiveCheckouts   = "active_checkouts"
	opInsertCheckout    = "insert_checkout"
	opMarkReturned      = "mark_returned"
	opResolveIdentities = "resolve_identities"
)

type (
	sqlQueryString    = string
	rowsAffectedInt64 = int64
	queryDuration     = time.Duration
)

// Store is the Postgres-backed implementation of catalog.RecordStore.
// It leverages a database adapter and supports customizable logging,
// metrics, tracing, and table configuration.
type Store struct {
	db               adapters.DBAdapter
	catalogTable     string
	checkoutsTable   string
	usersTable       string
	logger           catalog.Logger
	contextualLogger catalog.ContextualLogger
	metricsCollector catalog.MetricsCollector
	tracingCollector catalog.TracingCollector
}

// NewStoreFromPGXPool creates a new Store using a pgx Pool with optional configuration.
func NewStoreFromPGXPool(db *pgxpool.Pool, options ...Option) (*Store, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewPGXAdapter(db), options...)
}

// NewStoreFromSQLDB creates a new Store using a sql.DB with optional configuration.
func NewStoreFromSQLDB(db *sql.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLAdapter(db), options...)
}

// NewStoreFromSQLX creates a new Store using a sqlx.DB with optional configuration.
func NewStoreFromSQLX(db *sqlx.DB, options ...Option) (*Store, error) {
	if db == nil {
		return nil, catalog.ErrNilDatabaseConnection
	}

	return newStore(adapters.NewSQLXAdapter(db), options...)
}

func newStore(db adapters.DBAdapter, options ...Option) (*Store, error) {
	s := &Store{
		db:             db,
		catalogTable:   defaultCatalogTableName,
		checkoutsTable: defaultCheckoutsTableName,
		usersTable:     defaultUsersTableName,
	}

	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

type catalogRow struct {
	number        int64
	id            string
	title         string
	category      string
	languages     pq.StringArray
	pubYear       sql.NullInt64
	firstName     sql.NullString
	lastName      sql.NullString
	revisions     []byte
	titleCount    int
	categoryCount int
	categoryIndex int
}

// FindRecords retrieves the page of catalog records selected by the spec,
// ordered by relevance while a text search is active and by book number
// otherwise.
func (s *Store) FindRecords(ctx context.Context, spec catalog.FindSpec) ([]catalog.CatalogRecord, error) {
	obs, ctx := s.startObserving(ctx, opFindRecords)

	sqlQuery, buildErr := s.buildFindQuery(spec)
	if buildErr != nil {
		obs.failed(errorTypeBuildQuery, buildErr, 0)
		return nil, buildErr
	}

	rows, duration, queryErr := s.executeQuery(ctx, sqlQuery, catalog.ErrQueryingCatalogFailed)
	if queryErr != nil {
		obs.failed(errorTypeQuery, queryErr, duration)
		return nil, queryErr
	}
	defer s.closeRows(ctx, rows)

	records, scanErr := s.collectCatalogRows(ctx, rows)
	if scanErr != nil {
		obs.failed(errorTypeScan, scanErr, duration)
		return nil, scanErr
	}

	obs.succeeded(duration, float64(len(records)), logAttrRecordCount, len(records))

	return records, nil
}

// CountRecords counts the catalog records selected by the spec, ignoring
// its pagination.
func (s *Store) CountRecords(ctx context.Context, spec catalog.FindSpec) (int64, error) {
	obs, ctx := s.startObserving(ctx, opCountRecords)

	sqlQuery, buildErr := s.buildCountQuery(spec)
	if buildErr != nil {
		obs.failed(errorTypeBuildQuery, buildErr, 0)
		return 0, buildErr
	}

	total, duration, queryErr := s.querySingleInt64(ctx, sqlQuery, catalog.ErrCountingCatalogFailed)
	if queryErr != nil {
		obs.failed(errorTypeQuery, queryErr, duration)
		return 0, queryErr
	}

	obs.succeeded(duration, float64(total), logAttrRecordCount, total)

	return total, nil
}

// GetRecord retrieves a single catalog record by its composite id.
// It returns catalog.ErrNotFound when no record carries that id.
func (s *Store) GetRecord(ctx context.Context, id string) (catalog.CatalogRecord, error) {
	var empty catalog.CatalogRecord

	obs, ctx := s.startObserving(ctx, opGetRecord)

	sqlQuery, buildErr := s.buildGetRecordQuery(id)
	if buildErr != nil {
		obs.failed(errorTypeBuildQuery, buildErr, 0)
		return empty, buildErr
	}

	rows, duration, queryErr := s.executeQuery(ctx, sqlQuery, catalog.ErrQueryingCatalogFailed)
	if queryErr != nil {
		obs.failed(errorTypeQuery, queryErr, duration)
		return empty, queryErr
	}
	defer s.closeRows(ctx, rows)

	records, scanErr := s.collectCatalogRows(ctx, rows)
	if scanErr != nil {
		obs.failed(errorTypeScan, scanErr, duration)
		return empty, scanErr
	}

	if len(records) == 0 {
		obs.failed(errorTypeNotFound, catalog.ErrNotFound, duration)
		return empty, catalog.ErrNotFound
	}

	obs.succeeded(duration, 1, logAttrRecordID, id)

	return records[0], nil
}

// InsertRecord stores a fully assigned catalog record.
func (s *Store) InsertRecord(ctx context.Context, record catalog.CatalogRecord) error {
	obs, ctx := s.startObserving(ctx, opInsertRecord)

	sqlQuery, buildErr := s.buildInsertRecordQuery(record)
	if buildErr != nil {
		obs.failed(errorTypeBuildQuery, buildErr, 0)
		return buildErr
	}

	_, duration, execErr := s.executeExec(ctx, sqlQuery, catalog.ErrInsertingRecordFailed)
	if execErr != nil {
		obs.failed(errorTypeExec, execErr, duration)
		return execErr
	}

	obs.succeeded(duration, 1, logAttrRecordID, record.ID)

	return nil
}

// UpdateRecord applies the given changes to the record carrying the id.
// Empty changes are a no-op. It returns catalog.ErrNotFound when no record
// carries that id.
func (s *Store) UpdateRecord(ctx context.Context, id string, changes catalog.RecordChanges) error {
	if changes.IsEmpty() {
		return nil
	}

	obs, ctx := s.startObserving(ctx, opUpdateRecord)

	sqlQuery, buildErr := s.buildUpdateRecordQuery(id, changes)
	if buildErr != nil {
		obs.failed(errorTypeBuildQuery, buildErr, 0)
		return buildErr
	}

	rowsAffected, duration, execErr := s.executeExec(ctx, sqlQuery, catalog.ErrUpdatingRecordFailed)
	if execErr != nil {
		obs.failed(errorTypeExec, execErr, duration)
		return execErr
	}

	if rowsAffected == 0 {
		obs.failed(errorTypeNotFound, catalog.ErrNotFound, duration)
		return catalog.ErrNotFound
	}

	obs.succeeded(duration, 1, logAttrRecordID, id)

	return nil
}

// DeleteRecord removes the record carrying the id. Surviving records keep
// their numbers and composite ids. It returns catalog.ErrNotFound when no
// record carries that id.
func (s *Store) DeleteRecord(ctx context.Context, id string) error {
	obs, ctx := s.startObserving(ctx, opDeleteRecord)

	sqlQuery, buildErr := s.buildDeleteRecordQuery(id)
	if buildErr != nil {
		obs.failed(errorTypeBuildQuery, buildErr, 0)
		return buildErr
	}

	rowsAffected, duration, execErr := s.executeExec(ctx, sqlQuery, catalog.ErrDeletingRecordFailed)
	if execErr != nil {
		obs.failed(errorTypeExec, execErr, duration)
		return execErr
	}

	if rowsAffected == 0 {
		obs.failed(errorTypeNotFound, catalog.ErrNotFound, duration)
		return catalog.ErrNotFound
	}

	obs.succeeded(duration, 1, logAttrRecordID, id)

	return nil
}

// MaxBookNumber returns the highest assigned book number, zero for an empty
// catalog.
func (s *Store) MaxBookNumber(ctx context.Context) (int64, error) {
	obs, ctx := s.startObserving(ctx, opMaxBookNumber)

	sqlQuery, buildErr := s.buildMaxBookNumberQuery()
	if buildErr != nil {
		obs.failed(errorTypeBuildQuery, buildErr, 0)
		return 0, buildErr
	}

	maxNumber, duration, queryErr := s.querySingleInt64(ctx, sqlQuery, catalog.ErrQueryingCatalogFailed)
	if queryErr != nil {
		obs.failed(errorTypeQuery, queryErr, duration)
		return 0, queryErr
	}

	obs.succeeded(duration, float64(maxNumber))

	return maxNumber, nil
}

// CountByCategory counts records in the category, excluding the record with
// the given id when excludeID is non-empty.
func (s *Store) CountByCategory(ctx context.Context, category catalog.Category, excludeID string) (int64, error) {
	obs, ctx := s.startObserving(ctx, opCountByCategory)

	sqlQuery, buildErr := s.buildCountByCategoryQuery(category, excludeID)
	if buildErr != nil {
		obs.failed(errorTypeBuildQuery, buildErr, 0)
		return 0, buildErr
	}

	total, duration, queryErr := s.querySingleInt64(ctx, sqlQuery, catalog.ErrCountingCatalogFailed)
	if queryErr != nil {
		obs.failed(errorTypeQuery, queryErr, duration)
		return 0, queryErr
	}

	obs.succeeded(duration, float64(total))

	return total, nil
}

// CountByTitleGroup counts records sharing the category and title, excluding
// the record with the given id when excludeID is non-empty.
func (s *Store) CountByTitleGroup(
	ctx context.Context,
	category catalog.Category,
	title string,
	excludeID string,
) (int64, error) {

	obs, ctx := s.startObserving(ctx, opCountByTitleGroup)

	sqlQuery, buildErr := s.buildCountByTitleGroupQuery(category, title, excludeID)
	if buildErr != nil {
		obs.failed(errorTypeBuildQuery, buildErr, 0)
		return 0, buildErr
	}

	total, duration, queryErr := s.querySingleInt64(ctx, sqlQuery, catalog.ErrCountingCatalogFailed)
	if queryErr != nil {
		obs.failed(errorTypeQuery, queryErr, duration)
		return 0, queryErr
	}

	obs.succeeded(duration, float64(total))

	return total, nil
}

// TitleGroupIndex returns the category index shared by records of the given
// category and title group, or zero when the group has no other member.
func (s *Store) TitleGroupIndex(
	ctx context.Context,
	category catalog.Category,
	title string,
	excludeID string,
) (int, error) {

	obs, ctx := s.startObserving(ctx, opTitleGroupIndex)

	sqlQuery, buildErr := s.buildTitleGroupIndexQuery(category, title, excludeID)
	if buildErr != nil {
		obs.failed(errorTypeBuildQuery, buildErr, 0)
		return 0, buildErr
	}

	index, duration, queryErr := s.querySingleInt64(ctx, sqlQuery, catalog.ErrQueryingCatalogFailed)
	if queryErr != nil {
		obs.failed(errorTypeQuery, queryErr, duration)
		return 0, queryErr
	}

	obs.succeeded(duration, float64(index))

	return int(index), nil
}

// MaxCategoryIndex returns the highest category index assigned within the
// category, zero when the category has no records.
func (s *Store) MaxCategoryIndex(ctx context.Context, category catalog.Category) (int, error) {
	obs, ctx := s.startObserving(ctx, opMaxCategoryIndex)

	sqlQuery, buildErr := s.buildMaxCategoryIndexQuery(category)
	if buildErr != nil {
		obs.failed(errorTypeBuildQuery, buildErr, 0)
		return 0, buildErr
	}

	maxIndex, duration, queryErr := s.querySingleInt64(ctx, sqlQuery, catalog.ErrQueryingCatalogFailed)
	if queryErr != nil {
		obs.failed(errorTypeQuery, queryErr, duration)
		return 0, queryErr
	}

	obs.succeeded(duration, float64(maxIndex))

	return int(maxIndex), nil
}

// ActiveCheckouts returns the not-yet-returned checkouts for the given book
// numbers. An empty number set yields an empty result without touching the
// database.
func (s *Store) ActiveCheckouts(ctx context.Context, bookNumbers []int64) ([]catalog.CheckoutRecord, error) {
	if len(bookNumbers) == 0 {
		return nil, nil
	}

	obs, ctx := s.startObserving(ctx, opActiveCheckouts)

	sqlQuery, buildErr := s.buildActiveCheckoutsQuery(bookNumbers)
	if buildErr != nil {
		obs.failed(errorTypeBuildQuery, buildErr, 0)
		return nil, buildErr
	}

	rows, duration, queryErr := s.executeQuery(ctx, sqlQuery, catalog.ErrQueryingCheckoutsFailed)
	if queryErr != nil {
		obs.failed(errorTypeQuery, queryErr, duration)
		return nil, queryErr
	}
	defer s.closeRows(ctx, rows)

	checkouts := make([]catalog.CheckoutRecord, 0)

	for rows.Next() {
		var (
			bookNumber   int64
			holderID     string
			checkedOutAt time.Time
			returnedAt   sql.NullTime
		)

		if scanErr := rows.Scan(&bookNumber, &holderID, &checkedOutAt, &returnedAt); scanErr != nil {
			joinedErr := errors.Join(catalog.ErrScanningDBRowFailed, scanErr)
			obs.failed(errorTypeScan, joinedErr, duration)

			return nil, joinedErr
		}

		holder, parseErr := uuid.Parse(holderID)
		if parseErr != nil {
			joinedErr := errors.Join(catalog.ErrScanningDBRowFailed, parseErr)
			obs.failed(errorTypeScan, joinedErr, duration)

			return nil, joinedErr
		}

		checkout := catalog.CheckoutRecord{
			BookNumber:   bookNumber,
			HolderID:     holder,
			CheckedOutAt: checkedOutAt,
		}
		if returnedAt.Valid {
			returned := returnedAt.Time
			checkout.ReturnedAt = &returned
		}

		checkouts = append(checkouts, checkout)
	}

	obs.succeeded(duration, float64(len(checkouts)), logAttrRecordCount, len(checkouts))

	return checkouts, nil
}

// InsertCheckout records a new checkout unless the book is absent from the
// catalog or already has an active checkout, returning catalog.ErrNotFound
// or catalog.ErrAlreadyCheckedOut respectively. Both guards run inside the
// insert statement, so concurrent callers race on the database, not in
// memory; a follow-up existence check only disambiguates the zero-rows
// outcome.
func (s *Store) InsertCheckout(
	ctx context.Context,
	bookNumber int64,
	holderID uuid.UUID,
	at time.Time,
) error {

	obs, ctx := s.startObserving(ctx, opInsertCheckout)

	sqlQuery, buildErr := s.buildInsertCheckoutQuery(bookNumber, holderID, at)
	if buildErr != nil {
		obs.failed(errorTypeBuildQuery, buildErr, 0)
		return buildErr
	}

	rowsAffected, duration, execErr := s.executeExec(ctx, sqlQuery, catalog.ErrInsertingCheckoutFailed)
	if execErr != nil {
		obs.failed(errorTypeExec, execErr, duration)
		return execErr
	}

	if rowsAffected == 0 {
		countQuery, countBuildErr := s.buildCountBookNumberQuery(bookNumber)
		if countBuildErr != nil {
			obs.failed(errorTypeBuildQuery, countBuildErr, duration)
			return countBuildErr
		}

		bookCount, countDuration, countErr := s.querySingleInt64(ctx, countQuery, catalog.ErrQueryingCatalogFailed)
		if countErr != nil {
			obs.failed(errorTypeQuery, countErr, duration+countDuration)
			return countErr
		}

		if bookCount == 0 {
			obs.failed(errorTypeNotFound, catalog.ErrNotFound, duration+countDuration)
			return catalog.ErrNotFound
		}

		s.logOperation(ctx, logMsgCheckoutConflict, logAttrBookNumber, bookNumber)
		s.recordCheckoutConflictMetrics(opInsertCheckout)
		obs.finishSpanError(errorTypeConflict)

		return catalog.ErrAlreadyCheckedOut
	}

	obs.succeeded(duration, 1, logAttrBookNumber, bookNumber)

	return nil
}

// MarkReturned closes the active checkout held by holderID on the book and
// reports how many rows changed. Zero means the caller holds no active
// checkout on that book.
func (s *Store) MarkReturned(
	ctx context.Context,
	bookNumber int64,
	holderID uuid.UUID,
	at time.Time,
) (int64, error) {

	obs, ctx := s.startObserving(ctx, opMarkReturned)

	sqlQuery, buildErr := s.buildMarkReturnedQuery(bookNumber, holderID, at)
	if buildErr != nil {
		obs.failed(errorTypeBuildQuery, buildErr, 0)
		return 0, buildErr
	}

	rowsAffected, duration, execErr := s.executeExec(ctx, sqlQuery, catalog.ErrMarkingReturnedFailed)
	if execErr != nil {
		obs.failed(errorTypeExec, execErr, duration)
		return 0, execErr
	}

	obs.succeeded(duration, float64(rowsAffected), logAttrBookNumber, bookNumber, logAttrRowsAffected, rowsAffected)

	return rowsAffected, nil
}

// ResolveIdentities loads the identity rows for the given holder ids, keyed
// by holder id. Unknown ids are simply absent from the result.
func (s *Store) ResolveIdentities(
	ctx context.Context,
	holderIDs []uuid.UUID,
) (map[uuid.UUID]catalog.Identity, error) {

	identities := make(map[uuid.UUID]catalog.Identity)

	if len(holderIDs) == 0 {
		return identities, nil
	}

	obs, ctx := s.startObserving(ctx, opResolveIdentities)

	sqlQuery, buildErr := s.buildResolveIdentitiesQuery(holderIDs)
	if buildErr != nil {
		obs.failed(errorTypeBuildQuery, buildErr, 0)
		return nil, buildErr
	}

	rows, duration, queryErr := s.executeQuery(ctx, sqlQuery, catalog.ErrResolvingIdentitiesFailed)
	if queryErr != nil {
		obs.failed(errorTypeQuery, queryErr, duration)
		return nil, queryErr
	}
	defer s.closeRows(ctx, rows)

	for rows.Next() {
		var (
			id    string
			name  sql.NullString
			email sql.NullString
			phone sql.NullString
		)

		if scanErr := rows.Scan(&id, &name, &email, &phone); scanErr != nil {
			joinedErr := errors.Join(catalog.ErrScanningDBRowFailed, scanErr)
			obs.failed(errorTypeScan, joinedErr, duration)

			return nil, joinedErr
		}

		holder, parseErr := uuid.Parse(id)
		if parseErr != nil {
			joinedErr := errors.Join(catalog.ErrScanningDBRowFailed, parseErr)
			obs.failed(errorTypeScan, joinedErr, duration)

			return nil, joinedErr
		}

		identities[holder] = catalog.Identity{
			DisplayName: name.String,
			Email:       email.String,
			Phone:       phone.String,
		}
	}

	obs.succeeded(duration, float64(len(identities)), logAttrRecordCount, len(identities))

	return identities, nil
}

// executeQuery executes the SQL query and returns rows with timing information.
func (s *Store) executeQuery(ctx context.Context, sqlQuery string, failure error) (
	adapters.DBRows,
	queryDuration,
	error,
) {

	start := time.Now()
	rows, queryErr := s.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, duration)

	if queryErr != nil {
		s.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		return nil, duration, errors.Join(failure, queryErr)
	}

	return rows, duration, nil
}

// executeExec executes the SQL statement and returns rows affected with timing information.
func (s *Store) executeExec(ctx context.Context, sqlQuery string, failure error) (
	rowsAffectedInt64,
	queryDuration,
	error,
) {

	start := time.Now()
	result, execErr := s.db.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	s.logQueryWithDuration(ctx, sqlQuery, duration)

	if execErr != nil {
		s.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlQuery)
		return 0, duration, errors.Join(failure, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		s.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)
		return 0, duration, errors.Join(catalog.ErrGettingRowsAffectedFailed, rowsAffectedErr)
	}

	return rowsAffected, duration, nil
}

// querySingleInt64 executes a query expected to yield a single integer, as
// the count and max aggregates do. No row yields zero.
func (s *Store) querySingleInt64(ctx context.Context, sqlQuery string, failure error) (
	int64,
	queryDuration,
	error,
) {

	rows, duration, queryErr := s.executeQuery(ctx, sqlQuery, failure)
	if queryErr != nil {
		return 0, duration, queryErr
	}
	defer s.closeRows(ctx, rows)

	var value int64

	if rows.Next() {
		if scanErr := rows.Scan(&value); scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr)
			return 0, duration, errors.Join(catalog.ErrScanningDBRowFailed, scanErr)
		}
	}

	return value, duration, nil
}

// collectCatalogRows scans database rows into catalog records.
func (s *Store) collectCatalogRows(ctx context.Context, rows adapters.DBRows) ([]catalog.CatalogRecord, error) {
	records := make([]catalog.CatalogRecord, 0)

	for rows.Next() {
		row := catalogRow{}

		scanErr := rows.Scan(
			&row.number, &row.id, &row.title, &row.category, &row.languages, &row.pubYear,
			&row.firstName, &row.lastName, &row.revisions, &row.titleCount, &row.categoryCount, &row.categoryIndex,
		)
		if scanErr != nil {
			s.logError(ctx, logMsgScanRowFailed, scanErr)
			return nil, errors.Join(catalog.ErrScanningDBRowFailed, scanErr)
		}

		record, buildErr := buildRecordFromRow(row)
		if buildErr != nil {
			s.logError(ctx, logMsgScanRowFailed, buildErr)
			return nil, errors.Join(catalog.ErrScanningDBRowFailed, buildErr)
		}

		records = append(records, record)
	}

	return records, nil
}

func buildRecordFromRow(row catalogRow) (catalog.CatalogRecord, error) {
	languages := make([]catalog.Language, len(row.languages))
	for i, language := range row.languages {
		languages[i] = catalog.Language(language)
	}

	record := catalog.CatalogRecord{
		Number:        row.number,
		ID:            row.id,
		Title:         row.title,
		Category:      catalog.Category(row.category),
		Languages:     languages,
		FirstName:     row.firstName.String,
		LastName:      row.lastName.String,
		TitleCount:    row.titleCount,
		CategoryCount: row.categoryCount,
		CategoryIndex: row.categoryIndex,
	}

	if row.pubYear.Valid {
		year := int(row.pubYear.Int64)
		record.PubYear = &year
	}

	if len(row.revisions) > 0 {
		if unmarshalErr := jsoniter.ConfigFastest.Unmarshal(row.revisions, &record.Revisions); unmarshalErr != nil {
			return catalog.CatalogRecord{}, unmarshalErr
		}
	}

	return record, nil
}

// closeRows safely closes database rows and logs any errors.
func (s *Store) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		s.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}
