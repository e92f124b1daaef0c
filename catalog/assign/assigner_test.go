package assign_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium-io/library-catalog-go/catalog"
	"github.com/librarium-io/library-catalog-go/catalog/assign"
)

// counterStoreStub serves canned counter values and records which exclude id
// the assigner passed in.
type counterStoreStub struct {
	maxNumber       int64
	categoryCount   int64
	titleGroupCount int64
	groupIndex      int
	maxIndex        int

	seenExcludeID string
}

func (s *counterStoreStub) MaxBookNumber(_ context.Context) (int64, error) {
	return s.maxNumber, nil
}

func (s *counterStoreStub) CountByCategory(_ context.Context, _ catalog.Category, excludeID string) (int64, error) {
	s.seenExcludeID = excludeID
	return s.categoryCount, nil
}

func (s *counterStoreStub) CountByTitleGroup(_ context.Context, _ catalog.Category, _ string, excludeID string) (int64, error) {
	s.seenExcludeID = excludeID
	return s.titleGroupCount, nil
}

func (s *counterStoreStub) TitleGroupIndex(_ context.Context, _ catalog.Category, _ string, excludeID string) (int, error) {
	s.seenExcludeID = excludeID
	return s.groupIndex, nil
}

func (s *counterStoreStub) MaxCategoryIndex(_ context.Context, _ catalog.Category) (int, error) {
	return s.maxIndex, nil
}

func Test_ForCreate_AllocatesFreshIndex_WhenTitleGroupIsNew(t *testing.T) {
	// setup
	store := &counterStoreStub{maxNumber: 41, categoryCount: 7, titleGroupCount: 0, maxIndex: 5}
	assigner := assign.NewAssigner(store)

	// act
	assignment, err := assigner.ForCreate(
		context.Background(),
		catalog.CategoryGita,
		"Bhagavad Gita",
		[]catalog.Language{catalog.LanguageEnglish, catalog.LanguageHindi},
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(42), assignment.Number)
	assert.Equal(t, 8, assignment.CategoryCount)
	assert.Equal(t, 1, assignment.TitleCount)
	assert.Equal(t, 6, assignment.CategoryIndex)
	assert.Equal(t, "42 GIT-E,H 6.1", assignment.ID)
}

func Test_ForCreate_ReusesGroupIndex_WhenTitleGroupHasMembers(t *testing.T) {
	// setup
	store := &counterStoreStub{maxNumber: 99, categoryCount: 3, titleGroupCount: 2, groupIndex: 2, maxIndex: 9}
	assigner := assign.NewAssigner(store)

	// act
	assignment, err := assigner.ForCreate(
		context.Background(),
		catalog.CategoryVivekananda,
		"Raja Yoga",
		[]catalog.Language{catalog.LanguageEnglish},
	)

	// assert
	require.NoError(t, err)
	assert.Equal(t, int64(100), assignment.Number)
	assert.Equal(t, 3, assignment.TitleCount)
	assert.Equal(t, 2, assignment.CategoryIndex)
	assert.Equal(t, "100 VIV-E 2.3", assignment.ID)
}

func Test_ForUpdate_KeepsCounters_WhenGroupingIsUnchanged(t *testing.T) {
	// setup
	store := &counterStoreStub{categoryCount: 50, titleGroupCount: 50, groupIndex: 50, maxIndex: 50}
	assigner := assign.NewAssigner(store)
	year := 1962

	current := catalog.CatalogRecord{
		Number:        7,
		ID:            "7 VIV-E 2.1",
		Title:         "Raja Yoga",
		Category:      catalog.CategoryVivekananda,
		Languages:     []catalog.Language{catalog.LanguageEnglish},
		TitleCount:    1,
		CategoryCount: 4,
		CategoryIndex: 2,
	}

	// act
	changes, err := assigner.ForUpdate(context.Background(), current, catalog.RecordChanges{PubYear: &year})

	// assert
	require.NoError(t, err)
	assert.Nil(t, changes.TitleCount)
	assert.Nil(t, changes.CategoryCount)
	assert.Nil(t, changes.CategoryIndex)
	require.NotNil(t, changes.ID)
	assert.Equal(t, "7 VIV-E 2.1", *changes.ID)
}

func Test_ForUpdate_RecomputesCounters_WhenCategoryChanges(t *testing.T) {
	// setup
	store := &counterStoreStub{categoryCount: 10, titleGroupCount: 0, maxIndex: 4}
	assigner := assign.NewAssigner(store)

	current := catalog.CatalogRecord{
		Number:        7,
		ID:            "7 VIV-E 2.1",
		Title:         "Raja Yoga",
		Category:      catalog.CategoryVivekananda,
		Languages:     []catalog.Language{catalog.LanguageEnglish},
		TitleCount:    1,
		CategoryCount: 4,
		CategoryIndex: 2,
	}

	newCategory := catalog.CategoryScience
	changes := catalog.RecordChanges{Category: &newCategory}

	// act
	augmented, err := assigner.ForUpdate(context.Background(), current, changes)

	// assert
	require.NoError(t, err)
	require.NotNil(t, augmented.CategoryCount)
	assert.Equal(t, 11, *augmented.CategoryCount)
	require.NotNil(t, augmented.TitleCount)
	assert.Equal(t, 1, *augmented.TitleCount)
	require.NotNil(t, augmented.CategoryIndex)
	assert.Equal(t, 5, *augmented.CategoryIndex)
	require.NotNil(t, augmented.ID)
	assert.Equal(t, "7 SCI-E 5.1", *augmented.ID)
	assert.Equal(t, "7 VIV-E 2.1", store.seenExcludeID)
}

func Test_ForUpdate_RegeneratesOnlyTheID_WhenLanguagesChange(t *testing.T) {
	// setup
	// counter values differ from the record's so a recompute would be visible
	store := &counterStoreStub{categoryCount: 30, titleGroupCount: 5, groupIndex: 9, maxIndex: 9}
	assigner := assign.NewAssigner(store)

	current := catalog.CatalogRecord{
		Number:        7,
		ID:            "7 VIV-E 2.1",
		Title:         "Raja Yoga",
		Category:      catalog.CategoryVivekananda,
		Languages:     []catalog.Language{catalog.LanguageEnglish},
		TitleCount:    1,
		CategoryCount: 4,
		CategoryIndex: 2,
	}

	changes := catalog.RecordChanges{
		Languages: []catalog.Language{catalog.LanguageEnglish, catalog.LanguageBengali},
	}

	// act
	augmented, err := assigner.ForUpdate(context.Background(), current, changes)

	// assert
	require.NoError(t, err)
	require.NotNil(t, augmented.ID)
	assert.Equal(t, "7 VIV-E,B 2.1", *augmented.ID)
	assert.Nil(t, augmented.TitleCount)
	assert.Nil(t, augmented.CategoryCount)
	assert.Nil(t, augmented.CategoryIndex)
}

func Test_ForUpdate_KeepsCategoryCount_WhenOnlyTitleChanges(t *testing.T) {
	// setup
	store := &counterStoreStub{categoryCount: 30, titleGroupCount: 2, groupIndex: 6, maxIndex: 9}
	assigner := assign.NewAssigner(store)

	current := catalog.CatalogRecord{
		Number:        7,
		ID:            "7 VIV-E 2.1",
		Title:         "Raja Yoga",
		Category:      catalog.CategoryVivekananda,
		Languages:     []catalog.Language{catalog.LanguageEnglish},
		TitleCount:    1,
		CategoryCount: 4,
		CategoryIndex: 2,
	}

	newTitle := "Karma Yoga"
	changes := catalog.RecordChanges{Title: &newTitle}

	// act
	augmented, err := assigner.ForUpdate(context.Background(), current, changes)

	// assert
	require.NoError(t, err)
	assert.Nil(t, augmented.CategoryCount)
	require.NotNil(t, augmented.TitleCount)
	assert.Equal(t, 3, *augmented.TitleCount)
	require.NotNil(t, augmented.CategoryIndex)
	assert.Equal(t, 6, *augmented.CategoryIndex)
	require.NotNil(t, augmented.ID)
	assert.Equal(t, "7 VIV-E 6.3", *augmented.ID)
}
