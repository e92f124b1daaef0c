package test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/librarium-io/library-catalog-go/catalog"
	"github.com/librarium-io/library-catalog-go/catalog/assign"
	"github.com/librarium-io/library-catalog-go/catalog/backend"
	"github.com/librarium-io/library-catalog-go/catalog/lending"
	"github.com/librarium-io/library-catalog-go/catalog/manage"
	"github.com/librarium-io/library-catalog-go/catalog/search"
	"github.com/librarium-io/library-catalog-go/testutil/inmemorystore"
)

// FixedNow is the deterministic clock used by every fixture.
var FixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// CatalogFixture wires the full catalog stack over the in-memory store.
type CatalogFixture struct {
	Store   *inmemorystore.InMemoryStore
	Backend backend.Backend
}

// GivenCatalogFixture assembles assigner, manage service, lending manager,
// search engine, and backend over one in-memory store.
func GivenCatalogFixture(_ testing.TB) CatalogFixture {
	store := inmemorystore.NewInMemoryStore()
	assigner := assign.NewAssigner(store)
	mutator := manage.NewService(store, assigner)
	lender := lending.NewManager(store, lending.WithClock(func() time.Time { return FixedNow }))
	searcher := search.NewEngine(store, lender)

	return CatalogFixture{
		Store:   store,
		Backend: backend.New(searcher, mutator, lender),
	}
}

func GivenUniqueID(t testing.TB) uuid.UUID {
	holderID, err := uuid.NewV7()
	require.NoError(t, err, "error in arranging test data")

	return holderID
}

// GivenLibrarianSession returns a privileged session with a fresh holder id.
func GivenLibrarianSession(t testing.TB) catalog.Session {
	return catalog.PrivilegedSession(GivenUniqueID(t))
}

// GivenMemberSession returns an authenticated but unprivileged session with a
// fresh holder id.
func GivenMemberSession(t testing.TB) catalog.Session {
	return catalog.AuthenticatedSession(GivenUniqueID(t))
}

// GivenRegisteredMember returns a member session whose identity resolves
// through the store, as a row in the users table would.
func GivenRegisteredMember(t testing.TB, fixture CatalogFixture, identity catalog.Identity) catalog.Session {
	session := GivenMemberSession(t)

	holderID, ok := session.HolderID()
	require.True(t, ok, "error in arranging test data")
	fixture.Store.RegisterIdentity(holderID, identity)

	return session
}

// GivenCreatedRecord creates a record through the backend as a librarian and
// fails the test on rejection.
func GivenCreatedRecord(t testing.TB, fixture CatalogFixture, input manage.CreateInput) catalog.CatalogRecord {
	result := fixture.Backend.CreateCatalogItem(context.Background(), GivenLibrarianSession(t), input)
	require.True(t, result.Success, "error in arranging test data: %v", result.Err)
	require.NotNil(t, result.Record, "error in arranging test data")

	return *result.Record
}

// GivenCheckedOutBook checks the book out to the session holder and fails the
// test on rejection.
func GivenCheckedOutBook(t testing.TB, fixture CatalogFixture, session catalog.Session, bookNumber int64) {
	result := fixture.Backend.CheckoutItem(context.Background(), session, bookNumber)
	require.True(t, result.Success, "error in arranging test data: %v", result.Err)
}

func intPtr(value int) *int {
	return &value
}
