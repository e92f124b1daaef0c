package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium-io/library-catalog-go/catalog"
	"github.com/librarium-io/library-catalog-go/catalog/manage"
)

func Test_Create_Assigns_Identity_Fields_Across_Title_Groups(t *testing.T) {
	// setup
	fixture := GivenCatalogFixture(t)

	// act
	first := GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "Bhagavad Gita",
		Category:  catalog.CategoryGita,
		Languages: []catalog.Language{catalog.LanguageEnglish},
	})
	second := GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "Bhagavad Gita",
		Category:  catalog.CategoryGita,
		Languages: []catalog.Language{catalog.LanguageEnglish},
	})
	third := GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "Gita Commentary",
		Category:  catalog.CategoryGita,
		Languages: []catalog.Language{catalog.LanguageEnglish, catalog.LanguageHindi},
	})
	fourth := GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "History of the Math",
		Category:  catalog.CategoryHistory,
		Languages: []catalog.Language{catalog.LanguageEnglish},
	})

	// assert
	assert.Equal(t, "1 GIT-E 1.1", first.ID)
	assert.Equal(t, "2 GIT-E 1.2", second.ID)
	assert.Equal(t, "3 GIT-E,H 2.1", third.ID)
	assert.Equal(t, "4 HIS-E 1.1", fourth.ID)

	assert.Equal(t, 2, second.TitleCount)
	assert.Equal(t, 2, second.CategoryCount)
	assert.Equal(t, 1, second.CategoryIndex)
	assert.Equal(t, 3, third.CategoryCount)
	assert.Equal(t, 2, third.CategoryIndex)
	assert.Equal(t, 1, fourth.CategoryCount)
}

func Test_Find_Filters_And_Paginates_The_Catalog(t *testing.T) {
	// setup
	fixture := GivenCatalogFixture(t)

	GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "Raja Yoga",
		Category:  catalog.CategoryVivekananda,
		Languages: []catalog.Language{catalog.LanguageEnglish},
		PubYear:   intPtr(1896),
		FirstName: "Swami",
		LastName:  "Vivekananda",
	})
	GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "Karma Yoga",
		Category:  catalog.CategoryVivekananda,
		Languages: []catalog.Language{catalog.LanguageBengali},
		PubYear:   intPtr(1896),
		FirstName: "Swami",
		LastName:  "Vivekananda",
	})
	GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "The Gospel of Sri Ramakrishna",
		Category:  catalog.CategorySriRamakrishna,
		Languages: []catalog.Language{catalog.LanguageEnglish},
		PubYear:   intPtr(1942),
	})

	// act
	byCategory, categoryErr := fixture.Backend.FindCatalog(
		context.Background(),
		catalog.AnonymousSession(),
		catalog.BuildFindSpec().AnyCategoryOf(catalog.CategoryVivekananda).Finalize(),
	)
	byLanguage, languageErr := fixture.Backend.FindCatalog(
		context.Background(),
		catalog.AnonymousSession(),
		catalog.BuildFindSpec().AnyLanguageOf(catalog.LanguageBengali).Finalize(),
	)
	byYear, yearErr := fixture.Backend.FindCatalog(
		context.Background(),
		catalog.AnonymousSession(),
		catalog.BuildFindSpec().PublishedBetween(1900, 1950).Finalize(),
	)
	conjoined, conjoinedErr := fixture.Backend.FindCatalog(
		context.Background(),
		catalog.AnonymousSession(),
		catalog.BuildFindSpec().
			AnyCategoryOf(catalog.CategoryVivekananda).
			PublishedBetween(1940, 1950).
			Finalize(),
	)
	paged, pagedErr := fixture.Backend.FindCatalog(
		context.Background(),
		catalog.AnonymousSession(),
		catalog.BuildFindSpec().WithPageSize(2).OnPage(2).Finalize(),
	)

	// assert
	require.NoError(t, categoryErr)
	require.Len(t, byCategory.Rows, 2)
	assert.Equal(t, int64(2), byCategory.Pagination.Total)

	require.NoError(t, languageErr)
	require.Len(t, byLanguage.Rows, 1)
	assert.Equal(t, "Karma Yoga", byLanguage.Rows[0].Record.Title)

	require.NoError(t, yearErr)
	require.Len(t, byYear.Rows, 1)
	assert.Equal(t, "The Gospel of Sri Ramakrishna", byYear.Rows[0].Record.Title)

	require.NoError(t, conjoinedErr)
	assert.Empty(t, conjoined.Rows, "dimensions are conjoined, no record satisfies both")

	require.NoError(t, pagedErr)
	require.Len(t, paged.Rows, 1)
	assert.Equal(t, int64(3), paged.Pagination.Total)
	assert.Equal(t, 2, paged.Pagination.TotalPages)
	assert.False(t, paged.Pagination.HasNext)
	assert.True(t, paged.Pagination.HasPrev)
}

func Test_Find_Ranks_Title_Matches_Above_Author_Matches(t *testing.T) {
	// setup
	fixture := GivenCatalogFixture(t)

	GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "Letters of Swami Vivekananda",
		Category:  catalog.CategoryVivekananda,
		Languages: []catalog.Language{catalog.LanguageEnglish},
		FirstName: "Swami",
		LastName:  "Vivekananda",
	})
	GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "Jnana Yoga",
		Category:  catalog.CategoryVivekananda,
		Languages: []catalog.Language{catalog.LanguageEnglish},
		FirstName: "Swami",
		LastName:  "Vivekananda",
	})

	// act
	result, err := fixture.Backend.FindCatalog(
		context.Background(),
		catalog.AnonymousSession(),
		catalog.BuildFindSpec().
			MatchingQueries(catalog.Q(catalog.SearchByAuthor, "Vivekananda")).
			Finalize(),
	)

	// assert
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "Letters of Swami Vivekananda", result.Rows[0].Record.Title,
		"the record matching on title and author must rank first")
	assert.Equal(t, "Jnana Yoga", result.Rows[1].Record.Title)
}

func Test_Checkout_And_Return_Lifecycle(t *testing.T) {
	// setup
	fixture := GivenCatalogFixture(t)
	record := GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "Meditation and Its Methods",
		Category:  catalog.CategorySpiritualPractice,
		Languages: []catalog.Language{catalog.LanguageEnglish},
	})

	holder := GivenRegisteredMember(t, fixture, catalog.Identity{
		DisplayName: "Asha Gupta",
		Email:       "asha@example.org",
		Phone:       "+91 98765 43210",
	})
	rival := GivenMemberSession(t)
	librarian := GivenLibrarianSession(t)

	// act
	GivenCheckedOutBook(t, fixture, holder, record.Number)

	conflict := fixture.Backend.CheckoutItem(context.Background(), rival, record.Number)
	wrongReturn := fixture.Backend.ReturnItem(context.Background(), rival, record.Number)

	asHolder, holderErr := fixture.Backend.FindCatalog(
		context.Background(), holder, catalog.BuildFindSpec().Finalize())
	asRival, rivalErr := fixture.Backend.FindCatalog(
		context.Background(), rival, catalog.BuildFindSpec().Finalize())
	asLibrarian, librarianErr := fixture.Backend.FindCatalog(
		context.Background(), librarian, catalog.BuildFindSpec().Finalize())

	properReturn := fixture.Backend.ReturnItem(context.Background(), holder, record.Number)
	afterReturn, afterErr := fixture.Backend.FindCatalog(
		context.Background(), holder, catalog.BuildFindSpec().Finalize())

	// assert
	assert.False(t, conflict.Success)
	assert.ErrorIs(t, conflict.Err, catalog.ErrAlreadyCheckedOut)

	assert.False(t, wrongReturn.Success)
	assert.ErrorIs(t, wrongReturn.Err, catalog.ErrNotHolder)

	require.NoError(t, holderErr)
	require.Len(t, asHolder.Rows, 1)
	assert.True(t, asHolder.Rows[0].Lending.IsCheckedOut)
	assert.True(t, asHolder.Rows[0].Lending.CheckedOutByCaller)

	require.NoError(t, rivalErr)
	assert.True(t, asRival.Rows[0].Lending.IsCheckedOut)
	assert.False(t, asRival.Rows[0].Lending.CheckedOutByCaller)
	require.NotNil(t, asRival.Rows[0].Lending.Details, "any browsing user sees who holds a taken book")
	assert.Equal(t, "Asha Gupta", asRival.Rows[0].Lending.Details.DisplayName)

	require.NoError(t, librarianErr)
	require.NotNil(t, asLibrarian.Rows[0].Lending.Details)
	assert.Equal(t, "Asha Gupta", asLibrarian.Rows[0].Lending.Details.DisplayName)
	assert.Equal(t, FixedNow, asLibrarian.Rows[0].Lending.Details.CheckedOutAt)

	assert.True(t, properReturn.Success)
	require.NoError(t, afterErr)
	assert.False(t, afterReturn.Rows[0].Lending.IsCheckedOut)

	rivalRetry := fixture.Backend.CheckoutItem(context.Background(), rival, record.Number)
	assert.True(t, rivalRetry.Success, "a returned book is available to anyone again")
}

func Test_Checkout_Requires_An_Authenticated_Session(t *testing.T) {
	// setup
	fixture := GivenCatalogFixture(t)
	record := GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "Holy Mother",
		Category:  catalog.CategoryHolyMother,
		Languages: []catalog.Language{catalog.LanguageEnglish},
	})

	// act
	result := fixture.Backend.CheckoutItem(context.Background(), catalog.AnonymousSession(), record.Number)

	// assert
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Err, catalog.ErrNotAuthenticated)
}

func Test_Checkout_Requires_An_Existing_Book(t *testing.T) {
	// setup
	fixture := GivenCatalogFixture(t)
	librarian := GivenLibrarianSession(t)
	member := GivenMemberSession(t)

	// act
	missing := fixture.Backend.CheckoutItem(context.Background(), member, 99)

	// assert
	assert.False(t, missing.Success)
	assert.ErrorIs(t, missing.Err, catalog.ErrNotFound)

	// arrange
	record := GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "Jnana Yoga",
		Category:  catalog.CategoryVivekananda,
		Languages: []catalog.Language{catalog.LanguageEnglish},
	})
	deleted := fixture.Backend.DeleteCatalogItem(context.Background(), librarian, record.ID)
	require.True(t, deleted.Success)

	// act
	afterDelete := fixture.Backend.CheckoutItem(context.Background(), member, record.Number)

	// assert
	assert.False(t, afterDelete.Success)
	assert.ErrorIs(t, afterDelete.Err, catalog.ErrNotFound, "a deleted book has no checkout target")
}

func Test_Update_Regenerates_The_Composite_ID(t *testing.T) {
	// setup
	fixture := GivenCatalogFixture(t)
	librarian := GivenLibrarianSession(t)

	GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "The Upanishads",
		Category:  catalog.CategoryUpanishadsVedas,
		Languages: []catalog.Language{catalog.LanguageEnglish},
	})
	record := GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "Vedanta for Beginners",
		Category:  catalog.CategoryUpanishadsVedas,
		Languages: []catalog.Language{catalog.LanguageEnglish},
	})

	newCategory := catalog.CategoryVedanta

	// act
	result := fixture.Backend.UpdateCatalogItem(context.Background(), librarian, record.ID, catalog.RecordChanges{
		Category: &newCategory,
	})

	// assert
	require.True(t, result.Success, "unexpected rejection: %v", result.Err)
	require.NotNil(t, result.Record)
	assert.Equal(t, "2 VED-E 1.1", result.Record.ID)
	assert.Equal(t, 1, result.Record.CategoryCount)
	assert.Equal(t, 1, result.Record.CategoryIndex)

	_, getErr := fixture.Store.GetRecord(context.Background(), record.ID)
	assert.ErrorIs(t, getErr, catalog.ErrNotFound, "the previous id must no longer resolve")
}

func Test_Update_Keeps_Counters_When_Only_Languages_Change(t *testing.T) {
	// setup
	fixture := GivenCatalogFixture(t)
	librarian := GivenLibrarianSession(t)

	record := GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "Bhagavad Gita",
		Category:  catalog.CategoryGita,
		Languages: []catalog.Language{catalog.LanguageEnglish},
	})
	GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "Gita Commentary",
		Category:  catalog.CategoryGita,
		Languages: []catalog.Language{catalog.LanguageEnglish},
	})

	// act
	result := fixture.Backend.UpdateCatalogItem(context.Background(), librarian, record.ID, catalog.RecordChanges{
		Languages: []catalog.Language{catalog.LanguageEnglish, catalog.LanguageHindi},
	})

	// assert
	require.True(t, result.Success, "unexpected rejection: %v", result.Err)
	require.NotNil(t, result.Record)
	assert.Equal(t, "1 GIT-E,H 1.1", result.Record.ID, "only the language segment of the id may change")
	assert.Equal(t, 1, result.Record.CategoryIndex)
	assert.Equal(t, 1, result.Record.CategoryCount)
	assert.Equal(t, 1, result.Record.TitleCount)
}

func Test_Mutations_Require_A_Privileged_Session(t *testing.T) {
	// setup
	fixture := GivenCatalogFixture(t)
	member := GivenMemberSession(t)
	record := GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "Sri Sankara's Teachings",
		Category:  catalog.CategorySankara,
		Languages: []catalog.Language{catalog.LanguageEnglish},
	})

	// act
	createResult := fixture.Backend.CreateCatalogItem(context.Background(), member, manage.CreateInput{
		Title:     "Another Title",
		Category:  catalog.CategorySankara,
		Languages: []catalog.Language{catalog.LanguageEnglish},
	})
	deleteResult := fixture.Backend.DeleteCatalogItem(context.Background(), member, record.ID)

	// assert
	assert.False(t, createResult.Success)
	assert.ErrorIs(t, createResult.Err, catalog.ErrNotPrivileged)
	assert.False(t, deleteResult.Success)
	assert.ErrorIs(t, deleteResult.Err, catalog.ErrNotPrivileged)
}

func Test_Delete_Frees_The_Record_And_Numbering_Continues_From_The_Max(t *testing.T) {
	// setup
	fixture := GivenCatalogFixture(t)
	librarian := GivenLibrarianSession(t)

	first := GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "Children's Stories",
		Category:  catalog.CategoryChildren,
		Languages: []catalog.Language{catalog.LanguageEnglish},
	})
	second := GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "More Stories",
		Category:  catalog.CategoryChildren,
		Languages: []catalog.Language{catalog.LanguageEnglish},
	})

	// act
	deleteResult := fixture.Backend.DeleteCatalogItem(context.Background(), librarian, first.ID)
	replacement := GivenCreatedRecord(t, fixture, manage.CreateInput{
		Title:     "Newest Stories",
		Category:  catalog.CategoryChildren,
		Languages: []catalog.Language{catalog.LanguageEnglish},
	})

	// assert
	require.True(t, deleteResult.Success)
	assert.Equal(t, int64(2), second.Number)
	assert.Equal(t, int64(3), replacement.Number, "numbers grow from the surviving maximum, gaps stay")

	found, findErr := fixture.Backend.FindCatalog(
		context.Background(),
		catalog.AnonymousSession(),
		catalog.BuildFindSpec().Finalize(),
	)
	require.NoError(t, findErr)
	assert.Len(t, found.Rows, 2)
}
