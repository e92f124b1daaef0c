package catalog

import (
	"errors"
	"fmt"
)

// Validation failures, rejected before any store access.
var ErrValidation = errors.New("validation failed")
var ErrEmptyTitle = fmt.Errorf("%w: title must not be empty", ErrValidation)
var ErrEmptyCategory = fmt.Errorf("%w: category must not be empty", ErrValidation)
var ErrEmptyLanguages = fmt.Errorf("%w: at least one language is required", ErrValidation)

// Lending state violations, surfaced verbatim to the caller.
var ErrAlreadyCheckedOut = errors.New("book is already checked out")
var ErrNotHolder = errors.New("no active checkout held by this caller")

// ErrNotFound is returned when an id or book number does not exist.
var ErrNotFound = errors.New("catalog record not found")

// Authorization failures at the exposed operation surface.
var ErrNotAuthenticated = errors.New("caller is not authenticated")
var ErrNotPrivileged = errors.New("caller is not privileged to mutate catalog data")

// ErrStore is joined onto every underlying persistence failure so callers
// can treat them uniformly without inspecting driver errors.
var ErrStore = errors.New("catalog store failure")

var ErrNilDatabaseConnection = errors.New("nil database connection supplied")
var ErrEmptyTableNameSupplied = errors.New("empty table name supplied")

var ErrBuildingQueryFailed = fmt.Errorf("%w: building query failed", ErrStore)
var ErrQueryingCatalogFailed = fmt.Errorf("%w: querying catalog failed", ErrStore)
var ErrCountingCatalogFailed = fmt.Errorf("%w: counting catalog failed", ErrStore)
var ErrScanningDBRowFailed = fmt.Errorf("%w: scanning database row failed", ErrStore)
var ErrInsertingRecordFailed = fmt.Errorf("%w: inserting catalog record failed", ErrStore)
var ErrUpdatingRecordFailed = fmt.Errorf("%w: updating catalog record failed", ErrStore)
var ErrDeletingRecordFailed = fmt.Errorf("%w: deleting catalog record failed", ErrStore)
var ErrQueryingCheckoutsFailed = fmt.Errorf("%w: querying checkouts failed", ErrStore)
var ErrInsertingCheckoutFailed = fmt.Errorf("%w: inserting checkout failed", ErrStore)
var ErrMarkingReturnedFailed = fmt.Errorf("%w: marking checkout returned failed", ErrStore)
var ErrResolvingIdentitiesFailed = fmt.Errorf("%w: resolving holder identities failed", ErrStore)
var ErrGettingRowsAffectedFailed = fmt.Errorf("%w: getting rows affected count failed", ErrStore)
