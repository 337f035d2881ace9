package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/lingo/internal/errors"
)

func TestAdd(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	out, err := Add(ctx, database, AddInput{
		TargetWord:     "  Haus ",
		NativeWord:     "house",
		Categories:     []string{"nouns", " nouns", ""},
		SampleSentence: stringPtr("Das Haus ist alt."),
		Notes:          stringPtr("  "),
	})
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Len(t, out.ID, 26)

	got, err := Fetch(ctx, database, FetchInput{ID: out.ID})
	require.NoError(t, err)
	assert.Equal(t, "Haus", got.TargetWord)
	assert.Equal(t, []string{"nouns"}, got.Categories)
	assert.Nil(t, got.Notes)
	require.NotNil(t, got.Source)
	assert.Equal(t, "manual", *got.Source)
	assert.Equal(t, got.DateAdded, got.UpdatedAt)
	assert.Empty(t, got.LearningHistory)
	assert.Nil(t, got.LastLearning)
}

func TestAdd_Validation(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	tests := []struct {
		name  string
		input AddInput
	}{
		{"missing target", AddInput{NativeWord: "house"}},
		{"missing native", AddInput{TargetWord: "Haus", NativeWord: "   "}},
		{"bad mode", AddInput{TargetWord: "Haus", NativeWord: "house", Mode: "merge"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Add(ctx, database, tc.input)
			assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "got %v", err)
		})
	}
}

func TestAdd_DuplicatePair(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	id := mustAdd(t, database, "Haus", "house", "nouns")

	_, err := Record(ctx, database, RecordInput{ID: id, ExerciseKind: "flashcard", Success: true})
	require.NoError(t, err)

	// Normalized comparison: case and spacing do not make a new pair
	_, err = Add(ctx, database, AddInput{TargetWord: "haus", NativeWord: " House "})
	require.Error(t, err)
	var lErr *errors.LingoError
	require.ErrorAs(t, err, &lErr)
	assert.Equal(t, errors.ErrEntryAlreadyExists, lErr.Code)
	assert.Equal(t, id, lErr.Details["existing_id"])

	out, err := Add(ctx, database, AddInput{
		TargetWord: "Haus",
		NativeWord: "house",
		Categories: []string{"home"},
		Mode:       AddModeReplace,
	})
	require.NoError(t, err)
	assert.Equal(t, id, out.ID)
	assert.True(t, out.Replaced)

	got, err := Fetch(ctx, database, FetchInput{ID: id})
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, got.Categories)
	assert.Len(t, got.LearningHistory, 1, "replace keeps history")
}

func TestFetch_Errors(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	_, err := Fetch(ctx, database, FetchInput{ID: " "})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Fetch(ctx, database, FetchInput{ID: "01NOPE"})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	id := mustAdd(t, database, "Haus", "house", "nouns")

	_, err := Update(ctx, database, UpdateInput{ID: id})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "no fields")

	out, err := Update(ctx, database, UpdateInput{
		ID:             id,
		NativeWord:     stringPtr("building"),
		Categories:     &[]string{"nouns", "buildings"},
		SampleSentence: stringPtr("Ein großes Haus."),
		IsFavorite:     boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, id, out.ID)

	got, err := Fetch(ctx, database, FetchInput{ID: id})
	require.NoError(t, err)
	assert.Equal(t, "building", got.NativeWord)
	assert.Equal(t, []string{"nouns", "buildings"}, got.Categories)
	assert.True(t, got.IsFavorite)
	assert.Equal(t, out.UpdatedAt, got.UpdatedAt)

	// Empty string clears optional text
	_, err = Update(ctx, database, UpdateInput{ID: id, SampleSentence: stringPtr("")})
	require.NoError(t, err)
	got, err = Fetch(ctx, database, FetchInput{ID: id})
	require.NoError(t, err)
	assert.Nil(t, got.SampleSentence)

	_, err = Update(ctx, database, UpdateInput{ID: id, TargetWord: stringPtr(" ")})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest), "blank word")

	_, err = Update(ctx, database, UpdateInput{ID: "01NOPE", IsFavorite: boolPtr(true)})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestUpdate_PairCollision(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	mustAdd(t, database, "Haus", "house")
	id := mustAdd(t, database, "Auto", "car")

	_, err := Update(ctx, database, UpdateInput{
		ID:         id,
		TargetWord: stringPtr("Haus"),
		NativeWord: stringPtr("house"),
	})
	assert.True(t, errors.Is(err, errors.ErrEntryAlreadyExists), "got %v", err)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	id := mustAdd(t, database, "Haus", "house")
	_, err := Record(ctx, database, RecordInput{ID: id, ExerciseKind: "gap_fill"})
	require.NoError(t, err)

	out, err := Delete(ctx, database, DeleteInput{ID: id})
	require.NoError(t, err)
	assert.True(t, out.Deleted)

	_, err = Fetch(ctx, database, FetchInput{ID: id})
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = Delete(ctx, database, DeleteInput{ID: id})
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	// The pair can be added again after deletion
	mustAdd(t, database, "Haus", "house")
}

func TestFavorite(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	id := mustAdd(t, database, "Haus", "house")

	out, err := Favorite(ctx, database, FavoriteInput{ID: id})
	require.NoError(t, err)
	assert.True(t, out.IsFavorite, "toggle on")

	out, err = Favorite(ctx, database, FavoriteInput{ID: id})
	require.NoError(t, err)
	assert.False(t, out.IsFavorite, "toggle off")

	out, err = Favorite(ctx, database, FavoriteInput{ID: id, Favorite: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, out.IsFavorite)

	out, err = Favorite(ctx, database, FavoriteInput{ID: id, Favorite: boolPtr(true)})
	require.NoError(t, err)
	assert.True(t, out.IsFavorite, "explicit set is idempotent")

	_, err = Favorite(ctx, database, FavoriteInput{ID: "01NOPE"})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestRecord(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	id := mustAdd(t, database, "Haus", "house")

	out, err := Record(ctx, database, RecordInput{ID: id, ExerciseKind: "multiple-choice", Success: true, Date: 100, TimeSpentSeconds: 12})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, 1.0, out.SuccessRate)

	out, err = Record(ctx, database, RecordInput{ID: id, ExerciseKind: "translation", Date: 200})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Attempts)
	assert.Equal(t, 0.5, out.SuccessRate)

	got, err := Fetch(ctx, database, FetchInput{ID: id})
	require.NoError(t, err)
	require.Len(t, got.LearningHistory, 2)
	assert.Equal(t, "multiple_choice", string(got.LearningHistory[0].ExerciseKind))
	assert.Equal(t, 12, got.LearningHistory[0].TimeSpentSeconds)
	require.NotNil(t, got.LastLearning)
	assert.Equal(t, int64(200), *got.LastLearning)

	_, err = Record(ctx, database, RecordInput{ID: id, ExerciseKind: "essay"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Record(ctx, database, RecordInput{ID: id, ExerciseKind: "flashcard", TimeSpentSeconds: -1})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Record(ctx, database, RecordInput{ID: "01NOPE", ExerciseKind: "flashcard"})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
