package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CatalogRecord is one book entry with its bibliographic metadata and the
// derived identification fields maintained by the identity assigner.
//
// Number is immutable once assigned and acts as the lending key.
// ID is a pure function of (Number, Category, Languages, CategoryIndex, TitleCount)
// and is regenerated whenever any of those inputs changes; it is never edited directly.
type CatalogRecord struct {
	Number        int64
	ID            string
	Title         string
	Category      Category
	Languages     []Language
	PubYear       *int
	FirstName     string
	LastName      string
	Revisions     []RevisionTag
	TitleCount    int
	CategoryCount int
	CategoryIndex int
}

// ComposeRecordID renders the composite display identifier:
//
//	"{number} {category}-{languagesJoined} {categoryIndex}.{titleCount}"
func ComposeRecordID(number int64, category Category, languages []Language, categoryIndex int, titleCount int) string {
	return fmt.Sprintf("%d %s-%s %d.%d", number, category, JoinLanguages(languages), categoryIndex, titleCount)
}

// RecordChanges is a partial update to a catalog record. Nil pointer fields
// are left untouched; the Clear flags set their column to null/empty explicitly.
//
// The derived fields (ID, TitleCount, CategoryCount, CategoryIndex) are only
// populated by the identity assigner, never by caller input.
type RecordChanges struct {
	Title          *string
	Category       *Category
	Languages      []Language
	PubYear        *int
	ClearPubYear   bool
	FirstName      *string
	LastName       *string
	Revisions      []RevisionTag
	ClearRevisions bool

	ID            *string
	TitleCount    *int
	CategoryCount *int
	CategoryIndex *int
}

// IsEmpty reports whether the change set touches nothing.
func (rc RecordChanges) IsEmpty() bool {
	return rc.Title == nil &&
		rc.Category == nil &&
		rc.Languages == nil &&
		rc.PubYear == nil && !rc.ClearPubYear &&
		rc.FirstName == nil &&
		rc.LastName == nil &&
		rc.Revisions == nil && !rc.ClearRevisions &&
		rc.ID == nil &&
		rc.TitleCount == nil &&
		rc.CategoryCount == nil &&
		rc.CategoryIndex == nil
}

// CheckoutRecord is one row of lending history. At most one row per book
// may have a null ReturnedAt at any time (lending exclusivity).
// Rows are never deleted; a return only sets ReturnedAt.
type CheckoutRecord struct {
	BookNumber   int64
	HolderID     uuid.UUID
	CheckedOutAt time.Time
	ReturnedAt   *time.Time
}

// Active reports whether this row is the book's current checkout.
func (cr CheckoutRecord) Active() bool {
	return cr.ReturnedAt == nil
}

// Identity is the presentable form of a holder, resolved through the
// external identity collaborator.
type Identity struct {
	DisplayName string
	Email       string
	Phone       string
}

// CheckoutDetails describes the active holder of a checked-out book.
type CheckoutDetails struct {
	DisplayName  string
	Email        string
	Phone        string
	CheckedOutAt time.Time
}

// LendingStatus is the per-row enrichment attached to query results.
type LendingStatus struct {
	IsCheckedOut       bool
	CheckedOutByCaller bool
	Details            *CheckoutDetails
}

// Pagination describes the position of one result page within the full
// filtered set. TotalPages is ceil(Total/PageSize).
type Pagination struct {
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
	HasNext    bool
	HasPrev    bool
}

// Session carries the caller's identity and authorization explicitly into
// every operation, instead of the ambient per-request session the consuming
// application holds. An anonymous session can query but not lend or mutate.
type Session struct {
	holderID      uuid.UUID
	authenticated bool
	privileged    bool
}

// AnonymousSession is a caller with no resolved identity.
func AnonymousSession() Session {
	return Session{}
}

// AuthenticatedSession is a caller who may check books out and return them.
func AuthenticatedSession(holderID uuid.UUID) Session {
	return Session{holderID: holderID, authenticated: true}
}

// PrivilegedSession is a caller who may additionally mutate catalog data.
func PrivilegedSession(holderID uuid.UUID) Session {
	return Session{holderID: holderID, authenticated: true, privileged: true}
}

// HolderID returns the caller's identity and whether one is present.
func (s Session) HolderID() (uuid.UUID, bool) {
	return s.holderID, s.authenticated
}

// IsPrivileged reports whether the caller may mutate catalog data.
func (s Session) IsPrivileged() bool {
	return s.privileged
}
