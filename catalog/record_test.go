package catalog_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/librarium-io/library-catalog-go/catalog"
)

func Test_ComposeRecordID_RendersAllComponents(t *testing.T) {
	// act
	id := catalog.ComposeRecordID(
		42,
		catalog.CategoryGita,
		[]catalog.Language{catalog.LanguageEnglish, catalog.LanguageHindi},
		6,
		2,
	)

	// assert
	assert.Equal(t, "42 GIT-E,H 6.2", id)
}

func Test_ComposeRecordID_WithSingleLanguage(t *testing.T) {
	// act
	id := catalog.ComposeRecordID(7, catalog.CategoryVivekananda, []catalog.Language{catalog.LanguageEnglish}, 2, 1)

	// assert
	assert.Equal(t, "7 VIV-E 2.1", id)
}

func Test_RecordChanges_IsEmpty(t *testing.T) {
	title := "Gita"

	testCases := []struct {
		name     string
		changes  catalog.RecordChanges
		expected bool
	}{
		{
			name:     "zero value is empty",
			changes:  catalog.RecordChanges{},
			expected: true,
		},
		{
			name:     "a set pointer field counts",
			changes:  catalog.RecordChanges{Title: &title},
			expected: false,
		},
		{
			name:     "a clear flag counts",
			changes:  catalog.RecordChanges{ClearPubYear: true},
			expected: false,
		},
		{
			name:     "an empty language replacement counts",
			changes:  catalog.RecordChanges{Languages: []catalog.Language{}},
			expected: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.changes.IsEmpty())
		})
	}
}

func Test_CheckoutRecord_Active(t *testing.T) {
	// setup
	returned := time.Now()

	// assert
	assert.True(t, catalog.CheckoutRecord{BookNumber: 1}.Active())
	assert.False(t, catalog.CheckoutRecord{BookNumber: 1, ReturnedAt: &returned}.Active())
}

func Test_Sessions_CarryIdentityAndPrivilege(t *testing.T) {
	// setup
	holderID := uuid.New()

	// act
	anonymous := catalog.AnonymousSession()
	authenticated := catalog.AuthenticatedSession(holderID)
	privileged := catalog.PrivilegedSession(holderID)

	// assert
	_, ok := anonymous.HolderID()
	assert.False(t, ok)
	assert.False(t, anonymous.IsPrivileged())

	id, ok := authenticated.HolderID()
	assert.True(t, ok)
	assert.Equal(t, holderID, id)
	assert.False(t, authenticated.IsPrivileged())

	assert.True(t, privileged.IsPrivileged())
}
