package ops

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/lingo/internal/errors"
)

func seedVocabulary(t *testing.T, database *sql.DB) map[string]string {
	t.Helper()
	ctx := context.Background()
	ids := map[string]string{
		"Haus":  mustAdd(t, database, "Haus", "house", "nouns", "home"),
		"gehen": mustAdd(t, database, "gehen", "to walk", "verbs"),
		"Auto":  mustAdd(t, database, "Auto", "car", "nouns"),
		"Äpfel": mustAdd(t, database, "Äpfel", "apples", "nouns", "food"),
	}

	_, err := Favorite(ctx, database, FavoriteInput{ID: ids["gehen"], Favorite: boolPtr(true)})
	require.NoError(t, err)
	_, err = Favorite(ctx, database, FavoriteInput{ID: ids["Äpfel"], Favorite: boolPtr(true)})
	require.NoError(t, err)

	for _, rec := range []RecordInput{
		{ID: ids["gehen"], ExerciseKind: "gap_fill", Success: true, Date: 100},
		{ID: ids["gehen"], ExerciseKind: "gap_fill", Success: false, Date: 300},
		{ID: ids["Auto"], ExerciseKind: "matching", Success: true, Date: 200},
	} {
		_, err := Record(ctx, database, rec)
		require.NoError(t, err)
	}
	return ids
}

func listWords(out *ListOutput) []string {
	words := make([]string, 0, len(out.Items))
	for _, s := range out.Items {
		words = append(words, s.TargetWord)
	}
	return words
}

func TestList(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	seedVocabulary(t, database)
	cfg := testConfig()

	tests := []struct {
		name  string
		input ListInput
		want  []string
		sort  string
	}{
		{
			name:  "alphabetical",
			input: ListInput{Sort: "target_word", Order: "asc"},
			want:  []string{"Äpfel", "Auto", "gehen", "Haus"},
			sort:  "target_word_asc",
		},
		{
			name:  "category filter",
			input: ListInput{Category: stringPtr("nouns"), Sort: "target_word", Order: "desc"},
			want:  []string{"Haus", "Auto", "Äpfel"},
		},
		{
			name:  "favorites",
			input: ListInput{FavoritesOnly: true, Sort: "native_word", Order: "asc"},
			want:  []string{"Äpfel", "gehen"},
		},
		{
			name:  "with history by last learning",
			input: ListInput{HasHistoryOnly: true, Sort: "last_learning", Order: "desc"},
			want:  []string{"gehen", "Auto"},
		},
		{
			name:  "learning progress ascending",
			input: ListInput{HasHistoryOnly: true, Sort: "learning_progress", Order: "asc"},
			want:  []string{"gehen", "Auto"},
		},
		{
			name:  "fuzzy search on native word",
			input: ListInput{Search: stringPtr("walk"), Sort: "target_word", Order: "asc"},
			want:  []string{"gehen"},
		},
		{
			name:  "typo search",
			input: ListInput{Search: stringPtr("gehn"), Sort: "target_word", Order: "asc"},
			want:  []string{"gehen"},
		},
		{
			name:  "filters compose",
			input: ListInput{Category: stringPtr("nouns"), FavoritesOnly: true, Sort: "target_word"},
			want:  []string{"Äpfel"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out, err := List(ctx, database, cfg, tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, listWords(out))
			if tc.sort != "" {
				assert.Equal(t, tc.sort, out.Sort)
			}
		})
	}
}

func TestList_DefaultsAndPagination(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	seedVocabulary(t, database)
	cfg := testConfig()

	out, err := List(ctx, database, cfg, ListInput{})
	require.NoError(t, err)
	assert.Equal(t, "date_added_desc", out.Sort)
	assert.Len(t, out.Items, 4)

	out, err = List(ctx, database, cfg, ListInput{Sort: "target_word", Order: "asc", Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"Äpfel", "Auto", "gehen"}, listWords(out))
	assert.True(t, out.Pagination.HasMore)
	assert.Equal(t, 4, out.Pagination.Total)

	out, err = List(ctx, database, cfg, ListInput{Sort: "target_word", Order: "asc", Limit: 3, Offset: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"Haus"}, listWords(out))
	assert.False(t, out.Pagination.HasMore)
}

func TestList_Summaries(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	seedVocabulary(t, database)

	out, err := List(ctx, database, testConfig(), ListInput{Search: stringPtr("gehen")})
	require.NoError(t, err)
	require.Len(t, out.Items, 1)
	s := out.Items[0]
	assert.Equal(t, 2, s.Attempts)
	assert.Equal(t, 0.5, s.SuccessRate)
	require.NotNil(t, s.LastLearning)
	assert.Equal(t, int64(300), *s.LastLearning)
}

func TestList_InvalidSort(t *testing.T) {
	database := openTestDB(t)
	_, err := List(context.Background(), database, testConfig(), ListInput{Sort: "random"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestList_Empty(t *testing.T) {
	database := openTestDB(t)
	out, err := List(context.Background(), database, testConfig(), ListInput{})
	require.NoError(t, err)
	assert.NotNil(t, out.Items)
	assert.Empty(t, out.Items)
}

func TestCategories(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	seedVocabulary(t, database)

	out, err := Categories(ctx, database, CategoriesInput{})
	require.NoError(t, err)
	require.Len(t, out.Categories, 4)
	assert.Equal(t, "food", out.Categories[0].Name)
	assert.Equal(t, "home", out.Categories[1].Name)
	assert.Equal(t, "nouns", out.Categories[2].Name)
	assert.Equal(t, 3, out.Categories[2].Count)
	assert.Equal(t, "verbs", out.Categories[3].Name)
	assert.Nil(t, out.Entries)

	out, err = Categories(ctx, database, CategoriesInput{Name: stringPtr("nouns")})
	require.NoError(t, err)
	assert.Len(t, out.Entries, 3)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	seedVocabulary(t, database)

	out, err := Stats(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Entries)
	assert.Equal(t, 2, out.Favorites)
	assert.Equal(t, 2, out.WithHistory)
	assert.Equal(t, 4, out.Categories)
	assert.Equal(t, 3, out.Attempts)
	assert.Equal(t, 2, out.Successes)
	assert.InDelta(t, 0.75, out.AverageSuccessRate, 1e-9)
	assert.Equal(t, map[string]int{"gap_fill": 2, "matching": 1}, out.AttemptsByKind)
}

func TestStats_Empty(t *testing.T) {
	out, err := Stats(context.Background(), openTestDB(t))
	require.NoError(t, err)
	assert.Equal(t, 0, out.Entries)
	assert.Equal(t, 0.0, out.AverageSuccessRate)
}
