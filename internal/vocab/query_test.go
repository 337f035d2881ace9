package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func strPtr(s string) *string { return &s }

func targets(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.TargetWord
	}
	return out
}

func sampleEntries() []Entry {
	return []Entry{
		{ID: "1", TargetWord: "Haus", NativeWord: "house", Categories: []string{"nouns", "home"}, DateAdded: 300},
		{ID: "2", TargetWord: "gehen", NativeWord: "to walk", Categories: []string{"verbs"}, DateAdded: 100, IsFavorite: true,
			LearningHistory: []Attempt{{Success: true, Date: 50}, {Success: false, Date: 70}}},
		{ID: "3", TargetWord: "Auto", NativeWord: "car", Categories: []string{"nouns"}, DateAdded: 200,
			LearningHistory: []Attempt{{Success: true, Date: 60}}},
		{ID: "4", TargetWord: "Äpfel", NativeWord: "apples", Categories: []string{"food", "nouns"}, DateAdded: 400, IsFavorite: true},
	}
}

func TestQuery_NoFiltersPreservesCardinality(t *testing.T) {
	entries := sampleEntries()
	for _, key := range append(SortKeys, SortKey("bogus")) {
		for _, order := range []SortOrder{Asc, Desc} {
			got := Query(entries, Filters{}, key, order)
			assert.Len(t, got, len(entries), "key=%s order=%s", key, order)
			assert.ElementsMatch(t, targets(entries), targets(got))
		}
	}
}

func TestQuery_DoesNotMutateInput(t *testing.T) {
	entries := sampleEntries()
	before := targets(entries)

	_ = Query(entries, Filters{}, SortTargetWord, Desc)

	assert.Equal(t, before, targets(entries))
}

func TestQuery_Filters(t *testing.T) {
	entries := sampleEntries()

	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{"category", Filters{Category: strPtr("nouns")}, []string{"Haus", "Auto", "Äpfel"}},
		{"category is exact", Filters{Category: strPtr("noun")}, []string{}},
		{"favorites", Filters{FavoritesOnly: true}, []string{"gehen", "Äpfel"}},
		{"has history", Filters{HasHistoryOnly: true}, []string{"gehen", "Auto"}},
		{"search target", Filters{SearchTerm: strPtr("hau")}, []string{"Haus"}},
		{"search native token", Filters{SearchTerm: strPtr("walk")}, []string{"gehen"}},
		{"search category", Filters{SearchTerm: strPtr("food")}, []string{"Äpfel"}},
		{"search typo", Filters{SearchTerm: strPtr("hosue")}, []string{"Haus"}},
		{"blank search", Filters{SearchTerm: strPtr("   ")}, []string{"Haus", "gehen", "Auto", "Äpfel"}},
		{"combined AND", Filters{Category: strPtr("nouns"), FavoritesOnly: true}, []string{"Äpfel"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Query(entries, tt.filters, SortKey(""), Asc)
			assert.Equal(t, tt.want, targets(got))
		})
	}
}

func TestQuery_FavoritesOnlyInvariant(t *testing.T) {
	for _, e := range Query(sampleEntries(), Filters{FavoritesOnly: true}, SortDateAdded, Asc) {
		assert.True(t, e.IsFavorite)
	}
}

func TestQuery_SortDateAdded(t *testing.T) {
	entries := sampleEntries()
	assert.Equal(t, []string{"gehen", "Auto", "Haus", "Äpfel"}, targets(Query(entries, Filters{}, SortDateAdded, Asc)))
	assert.Equal(t, []string{"Äpfel", "Haus", "Auto", "gehen"}, targets(Query(entries, Filters{}, SortDateAdded, Desc)))
}

func TestQuery_SortTargetWordLocaleAware(t *testing.T) {
	entries := sampleEntries()
	got := NewPipeline(0, "de").Query(entries, Filters{}, SortTargetWord, Asc)
	// Collation places Ä with A and ignores case, unlike byte order
	assert.Equal(t, []string{"Äpfel", "Auto", "gehen", "Haus"}, targets(got))
}

func TestQuery_SortNativeWord(t *testing.T) {
	got := Query(sampleEntries(), Filters{}, SortNativeWord, Asc)
	assert.Equal(t, []string{"apples", "car", "house", "to walk"}, []string{got[0].NativeWord, got[1].NativeWord, got[2].NativeWord, got[3].NativeWord})
}

func TestQuery_LearningProgressExample(t *testing.T) {
	entries := []Entry{
		{TargetWord: "Haus"},
		{TargetWord: "Auto", LearningHistory: []Attempt{{Success: true}}},
	}
	assert.Equal(t, []string{"Haus", "Auto"}, targets(Query(entries, Filters{}, SortLearningProgress, Asc)))
}

func TestQuery_LearningProgressReverseAndStable(t *testing.T) {
	entries := []Entry{
		{TargetWord: "a", LearningHistory: []Attempt{{Success: true}, {Success: false}}},
		{TargetWord: "b"},
		{TargetWord: "c", LearningHistory: []Attempt{{Success: true}}},
		{TargetWord: "d", LearningHistory: []Attempt{{Success: false}, {Success: true}}},
		{TargetWord: "e"},
	}

	asc := targets(Query(entries, Filters{}, SortLearningProgress, Asc))
	desc := targets(Query(entries, Filters{}, SortLearningProgress, Desc))

	// Equal rates keep input order in both directions
	assert.Equal(t, []string{"b", "e", "a", "d", "c"}, asc)
	assert.Equal(t, []string{"c", "a", "d", "b", "e"}, desc)
}

func TestQuery_SortLastLearningAbsentIsEarliest(t *testing.T) {
	got := Query(sampleEntries(), Filters{}, SortLastLearning, Asc)
	assert.Equal(t, []string{"Haus", "Äpfel", "Auto", "gehen"}, targets(got))
}

func TestQuery_UnknownSortKeyKeepsOrder(t *testing.T) {
	entries := sampleEntries()
	assert.Equal(t, targets(entries), targets(Query(entries, Filters{}, SortKey("popularity"), Desc)))
}

func TestQuery_EmptyInput(t *testing.T) {
	got := Query(nil, Filters{}, SortDateAdded, Asc)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestPipeline_Threshold(t *testing.T) {
	entries := []Entry{{TargetWord: "house"}}
	strict := Pipeline{Threshold: 0.9, Locale: language.Und}
	assert.Empty(t, strict.Query(entries, Filters{SearchTerm: strPtr("hte")}, SortDateAdded, Asc))
	assert.Len(t, Query(entries, Filters{SearchTerm: strPtr("hte")}, SortDateAdded, Asc), 1)
}

func TestNewPipeline_BadLocale(t *testing.T) {
	p := NewPipeline(0.4, "not a locale!!")
	assert.Equal(t, language.Und, p.Locale)
}

func TestParseSortKeyAndOrder(t *testing.T) {
	k, err := ParseSortKey("Target_Word")
	require.NoError(t, err)
	assert.Equal(t, SortTargetWord, k)

	_, err = ParseSortKey("size")
	assert.Error(t, err)

	o, err := ParseSortOrder("DESC")
	require.NoError(t, err)
	assert.Equal(t, Desc, o)

	_, err = ParseSortOrder("up")
	assert.Error(t, err)
}

func TestAllCategories(t *testing.T) {
	got := AllCategories(sampleEntries())
	assert.Equal(t, []string{"food", "home", "nouns", "verbs"}, got)

	assert.Empty(t, AllCategories(nil))
}

func TestEntriesByCategory(t *testing.T) {
	got := EntriesByCategory(sampleEntries(), "nouns")
	assert.Equal(t, []string{"Haus", "Auto", "Äpfel"}, targets(got))
}

func TestCategoryCounts(t *testing.T) {
	got := CategoryCounts(sampleEntries())
	assert.Equal(t, []CategoryCount{
		{Name: "food", Count: 1},
		{Name: "home", Count: 1},
		{Name: "nouns", Count: 3},
		{Name: "verbs", Count: 1},
	}, got)
}
