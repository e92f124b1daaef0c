package manage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium-io/library-catalog-go/catalog"
	"github.com/librarium-io/library-catalog-go/catalog/assign"
	"github.com/librarium-io/library-catalog-go/catalog/manage"
)

type recordStoreStub struct {
	current catalog.CatalogRecord
	getErr  error

	inserted      *catalog.CatalogRecord
	updatedID     string
	updateChanges catalog.RecordChanges
	deletedID     string
}

func (s *recordStoreStub) GetRecord(_ context.Context, _ string) (catalog.CatalogRecord, error) {
	return s.current, s.getErr
}

func (s *recordStoreStub) InsertRecord(_ context.Context, record catalog.CatalogRecord) error {
	s.inserted = &record
	return nil
}

func (s *recordStoreStub) UpdateRecord(_ context.Context, id string, changes catalog.RecordChanges) error {
	s.updatedID = id
	s.updateChanges = changes

	return nil
}

func (s *recordStoreStub) DeleteRecord(_ context.Context, id string) error {
	s.deletedID = id
	return nil
}

type assignerStub struct {
	assignment assign.Assignment

	forCreateCalled bool
	forUpdateCalled bool
}

func (s *assignerStub) ForCreate(
	_ context.Context,
	_ catalog.Category,
	_ string,
	_ []catalog.Language,
) (assign.Assignment, error) {

	s.forCreateCalled = true

	return s.assignment, nil
}

func (s *assignerStub) ForUpdate(
	_ context.Context,
	current catalog.CatalogRecord,
	changes catalog.RecordChanges,
) (catalog.RecordChanges, error) {

	s.forUpdateCalled = true

	id := catalog.ComposeRecordID(current.Number, current.Category, current.Languages, current.CategoryIndex, current.TitleCount)
	changes.ID = &id

	return changes, nil
}

func Test_Create_RejectsInvalidInput_BeforeAnyStoreAccess(t *testing.T) {
	// setup
	store := &recordStoreStub{}
	assigner := &assignerStub{}
	service := manage.NewService(store, assigner)

	testCases := []struct {
		name        string
		input       manage.CreateInput
		expectedErr error
	}{
		{
			name:        "blank title",
			input:       manage.CreateInput{Title: "   ", Category: catalog.CategoryGita, Languages: []catalog.Language{catalog.LanguageEnglish}},
			expectedErr: catalog.ErrEmptyTitle,
		},
		{
			name:        "unknown category",
			input:       manage.CreateInput{Title: "Gita", Category: catalog.Category("XXX"), Languages: []catalog.Language{catalog.LanguageEnglish}},
			expectedErr: catalog.ErrEmptyCategory,
		},
		{
			name:        "no languages",
			input:       manage.CreateInput{Title: "Gita", Category: catalog.CategoryGita},
			expectedErr: catalog.ErrEmptyLanguages,
		},
		{
			name:        "unknown revision tag",
			input:       manage.CreateInput{Title: "Gita", Category: catalog.CategoryGita, Languages: []catalog.Language{catalog.LanguageEnglish}, Revisions: []catalog.RevisionTag{"Z"}},
			expectedErr: catalog.ErrValidation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := service.Create(context.Background(), tc.input)

			// assert
			assert.ErrorIs(t, err, tc.expectedErr)
			assert.ErrorIs(t, err, catalog.ErrValidation)
			assert.False(t, assigner.forCreateCalled)
			assert.Nil(t, store.inserted)
		})
	}
}

func Test_Create_PersistsRecordWithDerivedFields(t *testing.T) {
	// setup
	store := &recordStoreStub{}
	assigner := &assignerStub{
		assignment: assign.Assignment{
			Number:        42,
			ID:            "42 GIT-E 6.1",
			TitleCount:    1,
			CategoryCount: 8,
			CategoryIndex: 6,
		},
	}
	service := manage.NewService(store, assigner)

	// act
	record, err := service.Create(context.Background(), manage.CreateInput{
		Title:     "  Bhagavad Gita  ",
		Category:  catalog.CategoryGita,
		Languages: []catalog.Language{catalog.LanguageEnglish},
		FirstName: "A",
		LastName:  "B",
	})

	// assert
	require.NoError(t, err)
	require.NotNil(t, store.inserted)
	assert.Equal(t, "Bhagavad Gita", record.Title)
	assert.Equal(t, int64(42), record.Number)
	assert.Equal(t, "42 GIT-E 6.1", record.ID)
	assert.Equal(t, 8, record.CategoryCount)
	assert.Equal(t, *store.inserted, record)
}

func Test_Update_ReturnsRecordUnchanged_ForEmptyChanges(t *testing.T) {
	// setup
	current := catalog.CatalogRecord{Number: 7, ID: "7 GIT-E 1.1", Title: "Gita"}
	store := &recordStoreStub{current: current}
	assigner := &assignerStub{}
	service := manage.NewService(store, assigner)

	// act
	record, err := service.Update(context.Background(), "7 GIT-E 1.1", catalog.RecordChanges{})

	// assert
	require.NoError(t, err)
	assert.Equal(t, current, record)
	assert.False(t, assigner.forUpdateCalled)
	assert.Empty(t, store.updatedID)
}

func Test_Update_PersistsAugmentedChanges(t *testing.T) {
	// setup
	current := catalog.CatalogRecord{
		Number:        7,
		ID:            "7 GIT-E 1.1",
		Title:         "Gita",
		Category:      catalog.CategoryGita,
		Languages:     []catalog.Language{catalog.LanguageEnglish},
		TitleCount:    1,
		CategoryIndex: 1,
	}
	store := &recordStoreStub{current: current}
	assigner := &assignerStub{}
	service := manage.NewService(store, assigner)

	newTitle := "Bhagavad Gita"

	// act
	record, err := service.Update(context.Background(), "7 GIT-E 1.1", catalog.RecordChanges{Title: &newTitle})

	// assert
	require.NoError(t, err)
	assert.True(t, assigner.forUpdateCalled)
	assert.Equal(t, "7 GIT-E 1.1", store.updatedID)
	require.NotNil(t, store.updateChanges.Title)
	assert.Equal(t, "Bhagavad Gita", record.Title)
	assert.Equal(t, int64(7), record.Number)
}

func Test_Update_PropagatesNotFound(t *testing.T) {
	// setup
	store := &recordStoreStub{getErr: catalog.ErrNotFound}
	service := manage.NewService(store, &assignerStub{})
	newTitle := "Gita"

	// act
	_, err := service.Update(context.Background(), "missing", catalog.RecordChanges{Title: &newTitle})

	// assert
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func Test_Delete_RemovesTheRecord(t *testing.T) {
	// setup
	store := &recordStoreStub{}
	service := manage.NewService(store, &assignerStub{})

	// act
	err := service.Delete(context.Background(), "7 GIT-E 1.1")

	// assert
	require.NoError(t, err)
	assert.Equal(t, "7 GIT-E 1.1", store.deletedID)
}
