package lending_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium-io/library-catalog-go/catalog"
	"github.com/librarium-io/library-catalog-go/catalog/lending"
)

type checkoutStoreStub struct {
	activeCheckouts []catalog.CheckoutRecord
	identities      map[uuid.UUID]catalog.Identity

	insertErr        error
	markReturnedRows int64

	insertedBook   int64
	insertedHolder uuid.UUID
	insertedAt     time.Time
	resolvedCalled bool
}

func (s *checkoutStoreStub) ActiveCheckouts(_ context.Context, _ []int64) ([]catalog.CheckoutRecord, error) {
	return s.activeCheckouts, nil
}

func (s *checkoutStoreStub) InsertCheckout(_ context.Context, bookNumber int64, holderID uuid.UUID, at time.Time) error {
	s.insertedBook = bookNumber
	s.insertedHolder = holderID
	s.insertedAt = at

	return s.insertErr
}

func (s *checkoutStoreStub) MarkReturned(_ context.Context, _ int64, _ uuid.UUID, _ time.Time) (int64, error) {
	return s.markReturnedRows, nil
}

func (s *checkoutStoreStub) ResolveIdentities(_ context.Context, _ []uuid.UUID) (map[uuid.UUID]catalog.Identity, error) {
	s.resolvedCalled = true
	return s.identities, nil
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func Test_Checkout_RejectsAnonymousSessions(t *testing.T) {
	// setup
	store := &checkoutStoreStub{}
	manager := lending.NewManager(store)

	// act
	err := manager.Checkout(context.Background(), catalog.AnonymousSession(), 17)

	// assert
	assert.ErrorIs(t, err, catalog.ErrNotAuthenticated)
	assert.Zero(t, store.insertedBook)
}

func Test_Checkout_RecordsHolderAndUTCTimestamp(t *testing.T) {
	// setup
	holderID := uuid.New()
	at := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	store := &checkoutStoreStub{}
	manager := lending.NewManager(store, lending.WithClock(fixedClock(at)))

	// act
	err := manager.Checkout(context.Background(), catalog.AuthenticatedSession(holderID), 17)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(17), store.insertedBook)
	assert.Equal(t, holderID, store.insertedHolder)
	assert.Equal(t, at.UTC(), store.insertedAt)
}

func Test_Checkout_ReportsConflict_WhenBookIsAlreadyCheckedOut(t *testing.T) {
	// setup
	store := &checkoutStoreStub{insertErr: catalog.ErrAlreadyCheckedOut}
	manager := lending.NewManager(store)

	// act
	err := manager.Checkout(context.Background(), catalog.AuthenticatedSession(uuid.New()), 17)

	// assert
	assert.ErrorIs(t, err, catalog.ErrAlreadyCheckedOut)
}

func Test_Return_ReportsNotHolder_WhenNoActiveCheckoutMatches(t *testing.T) {
	// setup
	store := &checkoutStoreStub{markReturnedRows: 0}
	manager := lending.NewManager(store)

	// act
	err := manager.Return(context.Background(), catalog.AuthenticatedSession(uuid.New()), 17)

	// assert
	assert.ErrorIs(t, err, catalog.ErrNotHolder)
}

func Test_Return_Succeeds_WhenCallerHoldsTheBook(t *testing.T) {
	// setup
	store := &checkoutStoreStub{markReturnedRows: 1}
	manager := lending.NewManager(store)

	// act
	err := manager.Return(context.Background(), catalog.AuthenticatedSession(uuid.New()), 17)

	// assert
	assert.NoError(t, err)
}

func Test_StatusForPage_MarksCallerOwnCheckouts(t *testing.T) {
	// setup
	callerID := uuid.New()
	otherID := uuid.New()
	store := &checkoutStoreStub{
		activeCheckouts: []catalog.CheckoutRecord{
			{BookNumber: 1, HolderID: callerID, CheckedOutAt: time.Now()},
			{BookNumber: 2, HolderID: otherID, CheckedOutAt: time.Now()},
		},
	}
	manager := lending.NewManager(store)

	// act
	statuses, err := manager.StatusForPage(context.Background(), catalog.AuthenticatedSession(callerID), []int64{1, 2, 3})

	// assert
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	assert.True(t, statuses[1].IsCheckedOut)
	assert.True(t, statuses[1].CheckedOutByCaller)
	assert.True(t, statuses[2].IsCheckedOut)
	assert.False(t, statuses[2].CheckedOutByCaller)
	_, free := statuses[3]
	assert.False(t, free)
}

func Test_StatusForPage_ResolvesHolderDetails_ForEveryCaller(t *testing.T) {
	// setup
	holderID := uuid.New()
	checkedOutAt := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	store := &checkoutStoreStub{
		activeCheckouts: []catalog.CheckoutRecord{
			{BookNumber: 1, HolderID: holderID, CheckedOutAt: checkedOutAt},
		},
		identities: map[uuid.UUID]catalog.Identity{
			holderID: {DisplayName: "Asha Rao", Email: "asha@example.org", Phone: "555-0101"},
		},
	}
	manager := lending.NewManager(store)

	// act
	statuses, err := manager.StatusForPage(context.Background(), catalog.AuthenticatedSession(uuid.New()), []int64{1})

	// assert
	require.NoError(t, err)
	require.NotNil(t, statuses[1].Details)
	assert.Equal(t, "Asha Rao", statuses[1].Details.DisplayName)
	assert.Equal(t, "asha@example.org", statuses[1].Details.Email)
	assert.Equal(t, checkedOutAt, statuses[1].Details.CheckedOutAt)
}

func Test_StatusForPage_FallsBackThroughDescribeHolder_ForUnresolvableHolders(t *testing.T) {
	// setup
	holderID := uuid.New()
	store := &checkoutStoreStub{
		activeCheckouts: []catalog.CheckoutRecord{
			{BookNumber: 1, HolderID: holderID, CheckedOutAt: time.Now()},
		},
	}
	manager := lending.NewManager(store)

	// act
	statuses, err := manager.StatusForPage(context.Background(), catalog.AnonymousSession(), []int64{1})

	// assert
	require.NoError(t, err)
	assert.True(t, statuses[1].IsCheckedOut)
	assert.False(t, statuses[1].CheckedOutByCaller)
	require.NotNil(t, statuses[1].Details)
	assert.Equal(t, "Unknown User", statuses[1].Details.DisplayName)
}

func Test_DescribeHolder_FallsBackThroughNameEmailAndPlaceholder(t *testing.T) {
	testCases := []struct {
		name     string
		identity catalog.Identity
		expected string
	}{
		{
			name:     "stored name wins",
			identity: catalog.Identity{DisplayName: "Asha Rao", Email: "asha@example.org"},
			expected: "Asha Rao",
		},
		{
			name:     "email local part when name is missing",
			identity: catalog.Identity{Email: "asha@example.org"},
			expected: "asha",
		},
		{
			name:     "placeholder when nothing is known",
			identity: catalog.Identity{},
			expected: "Unknown User",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, lending.DescribeHolder(tc.identity))
		})
	}
}
