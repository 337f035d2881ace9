package ops

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/lingo/internal/exercise"
)

// TestWorkflow walks a word through its whole life: added, practiced,
// exported, edited, restored from the export, and deleted.
func TestWorkflow(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	cfg := testConfig()

	added, err := Add(ctx, database, AddInput{
		TargetWord: "Schmetterling",
		NativeWord: "butterfly",
		Categories: []string{"animals", " animals ", ""},
	})
	require.NoError(t, err)
	assert.True(t, added.Created)
	id := added.ID

	// A typo still finds it
	list, err := List(ctx, database, cfg, ListInput{Search: stringPtr("Schmeterling")})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.Equal(t, []string{"animals"}, list.Items[0].Categories)

	reply := `{"items":[{"word":"Schmetterling","sentence":"Der ___ fliegt.","answer":"Schmetterling"}]}`
	gen, err := Generate(ctx, database, cfg, cannedClient(reply, nil), GenerateInput{Kind: "gap_fill", Category: stringPtr("animals")})
	require.NoError(t, err)

	sub, err := Submit(ctx, database, cfg, SubmitInput{
		ExerciseID:       gen.Exercise.ID,
		Answers:          []exercise.Answer{textAnswer("schmetterling")},
		TimeSpentSeconds: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, sub.Result.Score)
	assert.Equal(t, 1, sub.Recorded)

	exportPath := filepath.Join(t.TempDir(), "backup.jsonl")
	_, err = Export(ctx, database, cfg, ExportInput{Path: exportPath})
	require.NoError(t, err)

	_, err = Update(ctx, database, UpdateInput{ID: id, NativeWord: stringPtr("moth")})
	require.NoError(t, err)

	imported, err := Import(ctx, database, cfg, ImportInput{Path: exportPath, Mode: ImportModeReplace})
	require.NoError(t, err)
	assert.Equal(t, 1, imported.Replaced)

	got, err := Fetch(ctx, database, FetchInput{ID: id})
	require.NoError(t, err)
	assert.Equal(t, "butterfly", got.NativeWord)
	assert.Equal(t, 1.0, got.SuccessRate)
	require.Len(t, got.LearningHistory, 1)
	assert.Equal(t, 12, got.LearningHistory[0].TimeSpentSeconds)

	_, err = Delete(ctx, database, DeleteInput{ID: id})
	require.NoError(t, err)

	stats, err := Stats(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Entries)
}
