package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/librarium-io/library-catalog-go/catalog"
)

func Test_ParseCategory_NormalizesCaseAndWhitespace(t *testing.T) {
	// act
	category, err := catalog.ParseCategory("  git ")

	// assert
	require.NoError(t, err)
	assert.Equal(t, catalog.CategoryGita, category)
}

func Test_ParseCategory_RejectsUnknownCodesAndTheAllSentinel(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{name: "unknown code", raw: "XYZ"},
		{name: "empty input", raw: ""},
		{name: "all sentinel is filter input only", raw: "All"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// act
			_, err := catalog.ParseCategory(tc.raw)

			// assert
			assert.ErrorIs(t, err, catalog.ErrUnknownCategoryCode)
		})
	}
}

func Test_ParseLanguage_AcceptsEveryEnumeratedCode(t *testing.T) {
	for _, raw := range []string{"E", "S", "H", "B", "T"} {
		// act
		language, err := catalog.ParseLanguage(raw)

		// assert
		require.NoError(t, err)
		assert.True(t, language.IsValid())
	}
}

func Test_ParseLanguage_RejectsUnknownCodes(t *testing.T) {
	// act
	_, err := catalog.ParseLanguage("X")

	// assert
	assert.ErrorIs(t, err, catalog.ErrUnknownLanguageCode)
}

func Test_ParseRevisionTag_NormalizesBeforeMatching(t *testing.T) {
	// act
	tag, err := catalog.ParseRevisionTag(" t ")

	// assert
	require.NoError(t, err)
	assert.Equal(t, catalog.RevisionTranslated, tag)
}

func Test_ParseRevisionTag_RejectsUnknownTags(t *testing.T) {
	// act
	_, err := catalog.ParseRevisionTag("Z")

	// assert
	assert.ErrorIs(t, err, catalog.ErrUnknownRevisionTag)
}

func Test_JoinLanguages_PreservesTheGivenOrder(t *testing.T) {
	// act
	joined := catalog.JoinLanguages([]catalog.Language{catalog.LanguageHindi, catalog.LanguageEnglish})

	// assert
	assert.Equal(t, "H,E", joined)
}

func Test_AllSentinels_AreNotValidStoredCodes(t *testing.T) {
	assert.False(t, catalog.CategoryAll.IsValid())
	assert.False(t, catalog.LanguageAll.IsValid())
}
