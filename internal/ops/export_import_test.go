package ops

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/lingo/internal/errors"
	"github.com/hpungsan/lingo/internal/vocab"
)

func readLines(t *testing.T, path string) []string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	seedVocabulary(t, database)

	exportPath := filepath.Join(t.TempDir(), "words.jsonl")
	out, err := Export(ctx, database, testConfig(), ExportInput{Path: exportPath})
	require.NoError(t, err)
	assert.Equal(t, exportPath, out.Path)
	assert.Equal(t, 4, out.Count)
	assert.NotZero(t, out.ExportedAt)

	lines := readLines(t, exportPath)
	require.Len(t, lines, 5)

	var header ExportHeader
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &header))
	assert.True(t, header.LingoExport)
	assert.Equal(t, vocab.ExportSchemaVersion, header.SchemaVersion)

	histories := 0
	for _, line := range lines[1:] {
		var rec vocab.ExportRecord
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		assert.False(t, rec.LingoExport)
		assert.NotEmpty(t, rec.ID)
		assert.NotNil(t, rec.Categories)
		histories += len(rec.LearningHistory)
	}
	assert.Equal(t, 3, histories)

	// No temp files left behind
	entries, err := os.ReadDir(filepath.Dir(exportPath))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestExport_Filtered(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	seedVocabulary(t, database)

	out, err := Export(ctx, database, testConfig(), ExportInput{
		Path:     filepath.Join(t.TempDir(), "nouns.jsonl"),
		Category: stringPtr("nouns"),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Count)

	out, err = Export(ctx, database, testConfig(), ExportInput{
		Path:          filepath.Join(t.TempDir(), "fav.jsonl"),
		FavoritesOnly: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
}

func TestExport_DefaultPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	database := openTestDB(t)
	mustAdd(t, database, "Haus", "house", "nouns")

	out, err := Export(context.Background(), database, nil, ExportInput{Category: stringPtr("../Nouns")})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".lingo", "exports"), filepath.Dir(out.Path))
	assert.True(t, strings.HasPrefix(filepath.Base(out.Path), "nouns-"), out.Path)
	assert.Equal(t, ".jsonl", filepath.Ext(out.Path))
}

func TestExport_RejectsBadPath(t *testing.T) {
	database := openTestDB(t)
	_, err := Export(context.Background(), database, testConfig(), ExportInput{Path: filepath.Join(t.TempDir(), "words.txt")})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openTestDB(t)
	ids := seedVocabulary(t, src)

	exportPath := filepath.Join(t.TempDir(), "words.jsonl")
	_, err := Export(ctx, src, testConfig(), ExportInput{Path: exportPath})
	require.NoError(t, err)

	dst := openTestDB(t)
	out, err := Import(ctx, dst, testConfig(), ImportInput{Path: exportPath})
	require.NoError(t, err)
	assert.Equal(t, 4, out.Imported)
	assert.Empty(t, out.Errors)

	got, err := Fetch(ctx, dst, FetchInput{ID: ids["gehen"]})
	require.NoError(t, err)
	assert.True(t, got.IsFavorite)
	require.Len(t, got.LearningHistory, 2)
	assert.Equal(t, int64(100), got.LearningHistory[0].Date)
	assert.Equal(t, int64(300), got.LearningHistory[1].Date)
}

func writeJSONL(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "import.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0600))
	return path
}

const importHeader = `{"_lingo_export":true,"schema_version":"1.0","exported_at":1700000000}`

func TestImport_ModeError(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	existing := mustAdd(t, database, "Haus", "house")

	path := writeJSONL(t,
		importHeader,
		`{"id":"01NEW0000000000000000000A1","target_word":"Auto","native_word":"car","categories":[],"date_added":1,"updated_at":1,"learning_history":[]}`,
		`{"id":"01NEW0000000000000000000A2","target_word":"haus","native_word":"HOUSE","categories":[],"date_added":1,"updated_at":1,"learning_history":[]}`,
	)

	out, err := Import(ctx, database, testConfig(), ImportInput{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Imported)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "PAIR_COLLISION", out.Errors[0].Code)
	assert.Equal(t, 3, out.Errors[0].Line)
	assert.Contains(t, out.Errors[0].Message, existing)

	// Atomic: the first record was rolled back
	stats, err := Stats(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Entries)
}

func TestImport_ModeErrorParseFailure(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	path := writeJSONL(t,
		importHeader,
		`{"id":"01NEW0000000000000000000A1","target_word":"Auto","native_word":"car"}`,
		`{not json`,
		`{"target_word":"Haus","native_word":"house"}`,
	)

	out, err := Import(ctx, database, testConfig(), ImportInput{Path: path})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Imported)
	require.Len(t, out.Errors, 2)
	assert.Equal(t, "PARSE_ERROR", out.Errors[0].Code)
	assert.Equal(t, "INVALID_RECORD", out.Errors[1].Code)

	// mode:skip imports the good record and reports the bad ones
	out, err = Import(ctx, database, testConfig(), ImportInput{Path: path, Mode: ImportModeSkip})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Imported)
	assert.Equal(t, 2, out.Skipped)
	assert.Len(t, out.Errors, 2)
}

func TestImport_ModeSkip(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	existing := mustAdd(t, database, "Haus", "house", "nouns")

	path := writeJSONL(t,
		importHeader,
		`{"id":"`+existing+`","target_word":"Haus","native_word":"house","categories":["changed"],"date_added":1,"updated_at":1,"learning_history":[]}`,
		`{"id":"01NEW0000000000000000000A1","target_word":"Auto","native_word":"car","categories":[],"date_added":1,"updated_at":1,"learning_history":[]}`,
	)

	out, err := Import(ctx, database, testConfig(), ImportInput{Path: path, Mode: ImportModeSkip})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Imported)
	assert.Equal(t, 1, out.Skipped)
	assert.Empty(t, out.Errors)

	got, err := Fetch(ctx, database, FetchInput{ID: existing})
	require.NoError(t, err)
	assert.Equal(t, []string{"nouns"}, got.Categories)
}

func TestImport_ModeReplace(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	byID := mustAdd(t, database, "Haus", "house")
	byPair := mustAdd(t, database, "Auto", "car")
	_, err := Record(ctx, database, RecordInput{ID: byPair, ExerciseKind: "flashcard"})
	require.NoError(t, err)

	path := writeJSONL(t,
		importHeader,
		// same id, new content and history
		`{"id":"`+byID+`","target_word":"Haus","native_word":"house","categories":["nouns"],"is_favorite":true,"date_added":5,"updated_at":6,"learning_history":[{"exercise_kind":"matching","success":true,"date":10,"time_spent_seconds":3}]}`,
		// different id, same pair as an existing entry
		`{"id":"01NEW0000000000000000000A9","target_word":"auto","native_word":"car","categories":["vehicles"],"date_added":7,"updated_at":7,"learning_history":[]}`,
		// id of one entry, pair of another
		`{"id":"`+byID+`","target_word":"Auto","native_word":"car","categories":[],"date_added":1,"updated_at":1,"learning_history":[]}`,
	)

	out, err := Import(ctx, database, testConfig(), ImportInput{Path: path, Mode: ImportModeReplace})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Imported)
	assert.Equal(t, 2, out.Replaced)
	assert.Equal(t, 1, out.Skipped)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "AMBIGUOUS_COLLISION", out.Errors[0].Code)

	got, err := Fetch(ctx, database, FetchInput{ID: byID})
	require.NoError(t, err)
	assert.True(t, got.IsFavorite)
	assert.Equal(t, int64(5), got.DateAdded)
	require.Len(t, got.LearningHistory, 1)
	assert.Equal(t, vocab.KindMatching, got.LearningHistory[0].ExerciseKind)

	got, err = Fetch(ctx, database, FetchInput{ID: byPair})
	require.NoError(t, err)
	assert.Equal(t, []string{"vehicles"}, got.Categories)
	require.Len(t, got.LearningHistory, 1, "stored attempts survive replace")
	assert.Equal(t, vocab.KindFlashcard, got.LearningHistory[0].ExerciseKind)
}

func TestImport_ModeReplaceKeepsNewerHistory(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	id := mustAdd(t, database, "Haus", "house")
	_, err := Record(ctx, database, RecordInput{ID: id, ExerciseKind: "flashcard", Success: true, Date: 100})
	require.NoError(t, err)

	backup, err := Export(ctx, database, testConfig(), ExportInput{Path: filepath.Join(t.TempDir(), "backup.jsonl")})
	require.NoError(t, err)

	for i := 1; i <= 3; i++ {
		_, err := Record(ctx, database, RecordInput{ID: id, ExerciseKind: "translation", Date: int64(100 + i)})
		require.NoError(t, err)
	}

	out, err := Import(ctx, database, testConfig(), ImportInput{Path: backup.Path, Mode: ImportModeReplace})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Replaced)

	got, err := Fetch(ctx, database, FetchInput{ID: id})
	require.NoError(t, err)
	require.Len(t, got.LearningHistory, 4)
	assert.Equal(t, vocab.KindFlashcard, got.LearningHistory[0].ExerciseKind)
	assert.Equal(t, int64(103), got.LearningHistory[3].Date)
}

func TestImport_InvalidInput(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	_, err := Import(ctx, database, testConfig(), ImportInput{Path: "x.jsonl", Mode: "rename"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = Import(ctx, database, testConfig(), ImportInput{Path: filepath.Join(t.TempDir(), "missing.jsonl")})
	assert.True(t, errors.Is(err, errors.ErrFileNotFound))
}
