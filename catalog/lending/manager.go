// Package lending manages book checkouts and returns. A book has at most
// one active checkout at any time; the store enforces that invariant inside
// the insert statement, so the manager only interprets the outcome.
package lending

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/librarium-io/library-catalog-go/catalog"
)

const unknownHolderName = "Unknown User"

// CheckoutStore defines the interface needed by the Manager for checkout
// persistence and identity resolution.
type CheckoutStore interface {
	ActiveCheckouts(ctx context.Context, bookNumbers []int64) ([]catalog.CheckoutRecord, error)
	InsertCheckout(ctx context.Context, bookNumber int64, holderID uuid.UUID, at time.Time) error
	MarkReturned(ctx context.Context, bookNumber int64, holderID uuid.UUID, at time.Time) (int64, error)
	ResolveIdentities(ctx context.Context, holderIDs []uuid.UUID) (map[uuid.UUID]catalog.Identity, error)
}

// Manager orchestrates checkout and return operations for authenticated
// sessions and resolves lending status for catalog pages.
type Manager struct {
	store CheckoutStore
	now   func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock sets a custom time source for the Manager.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new Manager with optional configuration.
func NewManager(store CheckoutStore, options ...Option) Manager {
	m := Manager{
		store: store,
		now:   time.Now,
	}

	for _, option := range options {
		option(&m)
	}

	return m
}

// Checkout records the session holder as the active borrower of the book.
// It returns catalog.ErrNotAuthenticated for anonymous sessions,
// catalog.ErrNotFound when no catalog record carries the book number, and
// catalog.ErrAlreadyCheckedOut when the book has an active checkout,
// including one held by the caller.
func (m Manager) Checkout(ctx context.Context, session catalog.Session, bookNumber int64) error {
	holderID, ok := session.HolderID()
	if !ok {
		return catalog.ErrNotAuthenticated
	}

	return m.store.InsertCheckout(ctx, bookNumber, holderID, m.now().UTC())
}

// Return closes the session holder's active checkout on the book. It returns
// catalog.ErrNotAuthenticated for anonymous sessions and catalog.ErrNotHolder
// when the caller holds no active checkout on that book, whether the book is
// free or held by someone else.
func (m Manager) Return(ctx context.Context, session catalog.Session, bookNumber int64) error {
	holderID, ok := session.HolderID()
	if !ok {
		return catalog.ErrNotAuthenticated
	}

	rowsAffected, markErr := m.store.MarkReturned(ctx, bookNumber, holderID, m.now().UTC())
	if markErr != nil {
		return markErr
	}

	if rowsAffected == 0 {
		return catalog.ErrNotHolder
	}

	return nil
}

// StatusForPage resolves the lending status for the given book numbers,
// typically the numbers of one result page. Books without an active checkout
// are absent from the result. Holder details are resolved for every caller,
// so a browsing user can see who holds a taken book.
func (m Manager) StatusForPage(
	ctx context.Context,
	session catalog.Session,
	bookNumbers []int64,
) (map[int64]catalog.LendingStatus, error) {

	statuses := make(map[int64]catalog.LendingStatus)

	if len(bookNumbers) == 0 {
		return statuses, nil
	}

	checkouts, checkoutsErr := m.store.ActiveCheckouts(ctx, bookNumbers)
	if checkoutsErr != nil {
		return nil, checkoutsErr
	}

	if len(checkouts) == 0 {
		return statuses, nil
	}

	identities, resolveErr := m.store.ResolveIdentities(ctx, holderIDsOf(checkouts))
	if resolveErr != nil {
		return nil, resolveErr
	}

	callerID, callerKnown := session.HolderID()

	for _, checkout := range checkouts {
		identity := identities[checkout.HolderID]

		statuses[checkout.BookNumber] = catalog.LendingStatus{
			IsCheckedOut:       true,
			CheckedOutByCaller: callerKnown && checkout.HolderID == callerID,
			Details: &catalog.CheckoutDetails{
				DisplayName:  DescribeHolder(identity),
				Email:        identity.Email,
				Phone:        identity.Phone,
				CheckedOutAt: checkout.CheckedOutAt,
			},
		}
	}

	return statuses, nil
}

func holderIDsOf(checkouts []catalog.CheckoutRecord) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(checkouts))
	holderIDs := make([]uuid.UUID, 0, len(checkouts))

	for _, checkout := range checkouts {
		if _, ok := seen[checkout.HolderID]; ok {
			continue
		}

		seen[checkout.HolderID] = struct{}{}
		holderIDs = append(holderIDs, checkout.HolderID)
	}

	return holderIDs
}

// DescribeHolder derives a display name from an identity: the stored name
// when present, the local part of the email address otherwise, and a fixed
// placeholder when neither exists.
func DescribeHolder(identity catalog.Identity) string {
	if name := strings.TrimSpace(identity.DisplayName); name != "" {
		return name
	}

	if email := strings.TrimSpace(identity.Email); email != "" {
		local, _, found := strings.Cut(email, "@")
		if found && local != "" {
			return local
		}

		return email
	}

	return unknownHolderName
}
