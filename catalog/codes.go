package catalog

import (
	"errors"
	"slices"
	"strings"
)

var ErrUnknownCategoryCode = errors.New("unknown category code")
var ErrUnknownLanguageCode = errors.New("unknown language code")
var ErrUnknownRevisionTag = errors.New("unknown revision tag")

// Category is a closed genre code from the catalog's fixed enumeration.
type Category string

// CategoryAll is the sentinel accepted in filter input to mean "no category restriction".
// It is never stored on a record.
const CategoryAll = Category("All")

const (
	CategoryClassBooks        = Category("CLB")
	CategoryDirectDisciples   = Category("DDL")
	CategoryDivineMother      = Category("DMW")
	CategoryGita              = Category("GIT")
	CategoryHistory           = Category("HIS")
	CategoryHolyMother        = Category("HMS")
	CategoryChildren          = Category("KID")
	CategoryMythologyPuranas  = Category("MNP")
	CategoryOtherDisciples    = Category("ODL")
	CategoryOtherPhilosophies = Category("OPH")
	CategoryPilgrimage        = Category("PIL")
	CategoryScience           = Category("SCI")
	CategoryService           = Category("SER")
	CategoryHinduReligion     = Category("SHR")
	CategorySongsAndHymns     = Category("SMH")
	CategorySankara           = Category("SNK")
	CategorySpiritualPractice = Category("SPD")
	CategorySriRamakrishna    = Category("SRK")
	CategoryVedanta           = Category("VED")
	CategoryVivekananda       = Category("VIV")
	CategoryUpanishadsVedas   = Category("UVO")
)

var allCategories = []Category{
	CategoryClassBooks, CategoryDirectDisciples, CategoryDivineMother, CategoryGita,
	CategoryHistory, CategoryHolyMother, CategoryChildren, CategoryMythologyPuranas,
	CategoryOtherDisciples, CategoryOtherPhilosophies, CategoryPilgrimage, CategoryScience,
	CategoryService, CategoryHinduReligion, CategorySongsAndHymns, CategorySankara,
	CategorySpiritualPractice, CategorySriRamakrishna, CategoryVedanta, CategoryVivekananda,
	CategoryUpanishadsVedas,
}

// ParseCategory validates a raw code against the fixed enumeration.
// Input is trimmed and upper-cased before matching; the All sentinel is rejected,
// it is only meaningful in filter input.
func ParseCategory(raw string) (Category, error) {
	candidate := Category(strings.ToUpper(strings.TrimSpace(raw)))

	if !slices.Contains(allCategories, candidate) {
		return "", ErrUnknownCategoryCode
	}

	return candidate, nil
}

// IsValid reports whether the category is a member of the fixed enumeration.
func (c Category) IsValid() bool {
	return slices.Contains(allCategories, c)
}

func (c Category) String() string {
	return string(c)
}

// Language is a closed language code from the catalog's fixed enumeration.
type Language string

// LanguageAll is the sentinel accepted in filter input to mean "no language restriction".
const LanguageAll = Language("All")

const (
	LanguageEnglish  = Language("E")
	LanguageSanskrit = Language("S")
	LanguageHindi    = Language("H")
	LanguageBengali  = Language("B")
	LanguageTamil    = Language("T")
)

var allLanguages = []Language{
	LanguageEnglish, LanguageSanskrit, LanguageHindi, LanguageBengali, LanguageTamil,
}

// ParseLanguage validates a raw code against the fixed enumeration.
func ParseLanguage(raw string) (Language, error) {
	candidate := Language(strings.ToUpper(strings.TrimSpace(raw)))

	if !slices.Contains(allLanguages, candidate) {
		return "", ErrUnknownLanguageCode
	}

	return candidate, nil
}

// IsValid reports whether the language is a member of the fixed enumeration.
func (l Language) IsValid() bool {
	return slices.Contains(allLanguages, l)
}

func (l Language) String() string {
	return string(l)
}

// JoinLanguages renders a language set the way the composite record id expects it,
// codes joined by "," in the given order.
func JoinLanguages(languages []Language) string {
	parts := make([]string, len(languages))
	for i, language := range languages {
		parts[i] = string(language)
	}

	return strings.Join(parts, ",")
}

// RevisionTag is an optional annotation on a record: translated, edited, analysis or compiled.
type RevisionTag string

const (
	RevisionTranslated = RevisionTag("T")
	RevisionEdited     = RevisionTag("E")
	RevisionAnalysis   = RevisionTag("A")
	RevisionCompiled   = RevisionTag("C")
)

var allRevisionTags = []RevisionTag{
	RevisionTranslated, RevisionEdited, RevisionAnalysis, RevisionCompiled,
}

// ParseRevisionTag validates a raw tag against the fixed enumeration.
func ParseRevisionTag(raw string) (RevisionTag, error) {
	candidate := RevisionTag(strings.ToUpper(strings.TrimSpace(raw)))

	if !slices.Contains(allRevisionTags, candidate) {
		return "", ErrUnknownRevisionTag
	}

	return candidate, nil
}

// IsValid reports whether the tag is a member of the fixed enumeration.
func (r RevisionTag) IsValid() bool {
	return slices.Contains(allRevisionTags, r)
}
