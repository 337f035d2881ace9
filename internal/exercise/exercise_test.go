package exercise

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/lingo/internal/vocab"
)

func testEntries() []vocab.Entry {
	sentence := "Das Haus ist alt."
	return []vocab.Entry{
		{ID: "e1", TargetWord: "Haus", NativeWord: "house", SampleSentence: &sentence},
		{ID: "e2", TargetWord: "Auto", NativeWord: "car"},
		{ID: "e3", TargetWord: "laufen", NativeWord: "to run"},
	}
}

// fixedOrder disables shuffling for the duration of a test.
func fixedOrder(t *testing.T) {
	t.Helper()
	orig := shuffle
	shuffle = func(int, func(i, j int)) {}
	t.Cleanup(func() { shuffle = orig })
}

func textAnswer(s string) Answer { return Answer{Text: &s} }
func choiceAnswer(i int) Answer  { return Answer{Choice: &i} }

func TestShapeOf(t *testing.T) {
	tests := []struct {
		kind vocab.ExerciseKind
		want Shape
		ok   bool
	}{
		{vocab.KindGapFill, ShapeGapFill, true},
		{vocab.KindWordFormation, ShapeGapFill, true},
		{vocab.KindMatching, ShapeMatching, true},
		{vocab.KindTranslation, ShapeTranslation, true},
		{vocab.KindMultipleChoice, ShapeMultipleChoice, true},
		{vocab.KindSynonymAntonym, ShapeMultipleChoice, true},
		{vocab.KindWordDefinition, ShapeMultipleChoice, true},
		{vocab.KindFlashcard, "", false},
	}
	for _, tt := range tests {
		got, ok := ShapeOf(tt.kind)
		assert.Equal(t, tt.want, got, string(tt.kind))
		assert.Equal(t, tt.ok, ok, string(tt.kind))
	}
	assert.Len(t, GeneratableKinds(), 7)
}

func TestValidate_TagMustMatchPayload(t *testing.T) {
	ex := &Exercise{Kind: vocab.KindGapFill, Matching: &Matching{Pairs: []MatchingPair{{Left: "a", Right: "b"}}}}
	err := ex.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidExercise))

	ex = &Exercise{
		Kind:     vocab.KindGapFill,
		GapFill:  &GapFill{Items: []GapFillItem{{Sentence: "a ___", Answer: "b"}}},
		Matching: &Matching{Pairs: []MatchingPair{{Left: "a", Right: "b"}}},
	}
	assert.Error(t, ex.Validate())

	ex = &Exercise{Kind: vocab.KindGapFill, GapFill: &GapFill{}}
	assert.Error(t, ex.Validate(), "empty payload")
}

func TestBuildPrompt(t *testing.T) {
	p, err := BuildPrompt(vocab.KindGapFill, testEntries(), PromptOptions{
		Count:          2,
		TargetLanguage: "German",
		NativeLanguage: "English",
		Difficulty:     "A2",
	})
	require.NoError(t, err)

	assert.Contains(t, p.System, "German")
	assert.Contains(t, p.User, "exactly 2 items at A2 level")
	assert.Contains(t, p.User, "- Haus = house (example: Das Haus ist alt.)")
	assert.Contains(t, p.User, "- laufen = to run")
	assert.Contains(t, p.User, `"sentence":"<sentence in German with ___`)
	assert.NotContains(t, p.User, "%!")
}

func TestBuildPrompt_AllKindsFormatCleanly(t *testing.T) {
	for _, kind := range GeneratableKinds() {
		p, err := BuildPrompt(kind, testEntries(), PromptOptions{})
		require.NoError(t, err, kind)
		assert.NotContains(t, p.User, "%!", kind)
		assert.NotContains(t, p.System, "%!", kind)
		assert.Contains(t, p.User, "exactly 3 items", kind)
	}
}

func TestBuildPrompt_Errors(t *testing.T) {
	_, err := BuildPrompt(vocab.KindFlashcard, testEntries(), PromptOptions{})
	assert.Error(t, err)

	_, err = BuildPrompt(vocab.KindGapFill, nil, PromptOptions{})
	assert.Error(t, err)
}

func TestParse_GapFill(t *testing.T) {
	raw := "```json\n" + `{"items":[
		{"word":"Haus","sentence":"Ich wohne in einem ___.","answer":"Haus","hint":" building "},
		{"word":"unknown","sentence":"Er fährt ein ___.","answer":"Auto","hint":""}
	]}` + "\n```"

	ex, err := Parse(vocab.KindGapFill, []byte(raw), testEntries())
	require.NoError(t, err)
	require.NoError(t, ex.Validate())

	require.Len(t, ex.GapFill.Items, 2)
	assert.Equal(t, "e1", ex.GapFill.Items[0].EntryID)
	require.NotNil(t, ex.GapFill.Items[0].Hint)
	assert.Equal(t, "building", *ex.GapFill.Items[0].Hint)
	// Unknown word falls back to the answer
	assert.Equal(t, "e2", ex.GapFill.Items[1].EntryID)
	assert.Nil(t, ex.GapFill.Items[1].Hint)
	assert.Equal(t, []string{"e1", "e2", "e3"}, ex.EntryIDs)
}

func TestParse_Unlinked(t *testing.T) {
	raw := `{"items":[{"word":"Baum","source":"The tree is green.","answer":"Der Baum ist grün."}]}`
	ex, err := Parse(vocab.KindTranslation, []byte(raw), testEntries())
	require.NoError(t, err)
	assert.Equal(t, "", ex.Translation.Items[0].EntryID)
}

func TestParse_Matching(t *testing.T) {
	fixedOrder(t)
	raw := `{"pairs":[{"word":"Haus","left":"Haus","right":"house"},{"word":"Auto","left":"Auto","right":"car"}]}`

	ex, err := Parse(vocab.KindMatching, []byte(raw), testEntries())
	require.NoError(t, err)
	assert.Equal(t, []string{"house", "car"}, ex.Matching.Options)
	assert.Equal(t, "e2", ex.Matching.Pairs[1].EntryID)
}

func TestParse_MultipleChoice(t *testing.T) {
	raw := `{"items":[{"word":"Haus","question":"What does Haus mean?","options":["house","car","tree"],"correct_index":0}]}`
	ex, err := Parse(vocab.KindWordDefinition, []byte(raw), testEntries())
	require.NoError(t, err)
	assert.Equal(t, vocab.KindWordDefinition, ex.Kind)
	assert.NotNil(t, ex.MultipleChoice)
	assert.Nil(t, ex.GapFill)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		kind vocab.ExerciseKind
		raw  string
		msg  string
	}{
		{"not json", vocab.KindGapFill, `sure, here you go`, ""},
		{"no items", vocab.KindGapFill, `{"items":[]}`, "no items"},
		{"missing gap", vocab.KindGapFill, `{"items":[{"sentence":"no gap here","answer":"x"}]}`, "gap"},
		{"empty answer", vocab.KindWordFormation, `{"items":[{"sentence":"a ___","answer":"  "}]}`, "answer is empty"},
		{"one option", vocab.KindMultipleChoice, `{"items":[{"question":"q","options":["a"],"correct_index":0}]}`, "at least 2 options"},
		{"index out of range", vocab.KindMultipleChoice, `{"items":[{"question":"q","options":["a","b"],"correct_index":2}]}`, "out of range"},
		{"negative index", vocab.KindSynonymAntonym, `{"items":[{"question":"q","options":["a","b"],"correct_index":-1}]}`, "out of range"},
		{"missing index", vocab.KindMultipleChoice, `{"items":[{"question":"q","options":["a","b"]}]}`, "correct_index is missing"},
		{"duplicate options", vocab.KindMultipleChoice, `{"items":[{"question":"q","options":["a","A "],"correct_index":0}]}`, "duplicate option"},
		{"duplicate pair", vocab.KindMatching, `{"pairs":[{"left":"Haus","right":"house"},{"left":"haus","right":"home"}]}`, "duplicate pair"},
		{"empty translation", vocab.KindTranslation, `{"items":[{"source":"","answer":"x"}]}`, "required"},
		{"flashcard", vocab.KindFlashcard, `{}`, "no generated content"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.kind, []byte(tt.raw), testEntries())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidExercise), "error %v should wrap ErrInvalidExercise", err)
			if tt.msg != "" {
				assert.True(t, strings.Contains(err.Error(), tt.msg), "error %q should mention %q", err, tt.msg)
			}
		})
	}
}

func TestGrade_GapFill(t *testing.T) {
	ex := &Exercise{
		ID:   "x1",
		Kind: vocab.KindGapFill,
		GapFill: &GapFill{Items: []GapFillItem{
			{EntryID: "e1", Sentence: "Ein ___.", Answer: "Haus"},
			{EntryID: "e2", Sentence: "Ein ___.", Answer: "Auto"},
			{EntryID: "e3", Sentence: "Wir ___.", Answer: "laufen"},
		}},
	}

	res, err := Grade(ex, []Answer{textAnswer(" haus! "), textAnswer("Atuo")}, GradeOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 33, res.Score)
	assert.Equal(t, []int{1, 2}, res.Mistakes)
	assert.Equal(t, "e2", res.Items[1].EntryID)
	assert.Equal(t, "Atuo", res.Items[1].Given)
	assert.Equal(t, "Auto", res.Items[1].Expected)

	// With typo tolerance the transposition passes (similarity 0.5)
	res, err = Grade(ex, []Answer{textAnswer("Haus"), textAnswer("Atuo"), textAnswer("laufen")}, GradeOptions{TypoTolerance: 0.5})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Correct)
	assert.Equal(t, 100, res.Score)
	assert.Empty(t, res.Mistakes)
}

func TestGrade_MultipleChoice(t *testing.T) {
	ex := &Exercise{
		Kind: vocab.KindMultipleChoice,
		MultipleChoice: &MultipleChoice{Items: []MultipleChoiceItem{
			{Question: "Haus?", Options: []string{"car", "house"}, CorrectIndex: 1},
			{Question: "Auto?", Options: []string{"car", "house"}, CorrectIndex: 0},
		}},
	}

	res, err := Grade(ex, []Answer{choiceAnswer(1), choiceAnswer(5)}, GradeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Correct)
	assert.Equal(t, []int{1}, res.Mistakes)
	assert.Equal(t, "5", res.Items[1].Given)
}

func TestGrade_Matching(t *testing.T) {
	ex := &Exercise{
		Kind: vocab.KindMatching,
		Matching: &Matching{
			Pairs:   []MatchingPair{{Left: "Haus", Right: "house"}, {Left: "Auto", Right: "car"}},
			Options: []string{"car", "house"},
		},
	}

	res, err := Grade(ex, []Answer{choiceAnswer(1), choiceAnswer(0)}, GradeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Correct)

	res, err = Grade(ex, []Answer{choiceAnswer(0), choiceAnswer(1)}, GradeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Correct)
	assert.Equal(t, []int{0, 1}, res.Mistakes)
}

func TestGrade_TooManyAnswers(t *testing.T) {
	ex := &Exercise{
		Kind:        vocab.KindTranslation,
		Translation: &Translation{Items: []TranslationItem{{Source: "The car.", Answer: "Das Auto."}}},
	}
	_, err := Grade(ex, []Answer{textAnswer("a"), textAnswer("b")}, GradeOptions{})
	assert.Error(t, err)
}

func TestTextMatches(t *testing.T) {
	assert.True(t, TextMatches("das auto", "Das Auto.", 0))
	assert.False(t, TextMatches("", "", 0), "blank answers never match")
	assert.False(t, TextMatches("Haus", "Maus", 0))
	assert.True(t, TextMatches("Haus", "Maus", 0.75))
}

func TestRetry(t *testing.T) {
	fixedOrder(t)
	ex := &Exercise{
		ID:   "x1",
		Kind: vocab.KindMatching,
		Matching: &Matching{
			Pairs: []MatchingPair{
				{EntryID: "e1", Left: "Haus", Right: "house"},
				{EntryID: "e2", Left: "Auto", Right: "car"},
				{EntryID: "e3", Left: "laufen", Right: "to run"},
			},
			Options: []string{"to run", "house", "car"},
		},
	}
	res := &Result{Mistakes: []int{2, 0}}

	retry, err := Retry(ex, res)
	require.NoError(t, err)
	require.NoError(t, retry.Validate())

	assert.Equal(t, vocab.KindMatching, retry.Kind)
	require.NotNil(t, retry.ParentID)
	assert.Equal(t, "x1", *retry.ParentID)
	assert.Equal(t, "", retry.ID)
	require.Len(t, retry.Matching.Pairs, 2)
	assert.Equal(t, "Haus", retry.Matching.Pairs[0].Left)
	assert.Equal(t, "laufen", retry.Matching.Pairs[1].Left)
	assert.Equal(t, []string{"house", "to run"}, retry.Matching.Options)
	assert.Equal(t, []string{"e1", "e3"}, retry.EntryIDs)

	// The original is untouched
	assert.Len(t, ex.Matching.Pairs, 3)
}

func TestRetry_NoMistakes(t *testing.T) {
	ex := &Exercise{
		Kind:    vocab.KindGapFill,
		GapFill: &GapFill{Items: []GapFillItem{{Sentence: "a ___", Answer: "b"}}},
	}
	_, err := Retry(ex, &Result{Mistakes: []int{}})
	assert.ErrorIs(t, err, ErrNoMistakes)
}

func TestGradeThenRetryRoundTrip(t *testing.T) {
	raw := `{"items":[
		{"word":"Haus","question":"Haus?","options":["house","car"],"correct_index":0},
		{"word":"Auto","question":"Auto?","options":["house","car"],"correct_index":1},
		{"word":"laufen","question":"laufen?","options":["to run","to eat"],"correct_index":0}
	]}`
	ex, err := Parse(vocab.KindMultipleChoice, []byte(raw), testEntries())
	require.NoError(t, err)
	ex.ID = "x2"

	res, err := Grade(ex, []Answer{choiceAnswer(0), choiceAnswer(0), choiceAnswer(1)}, GradeOptions{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, res.Mistakes)

	retry, err := Retry(ex, res)
	require.NoError(t, err)
	assert.Equal(t, 2, retry.Len())
	assert.Equal(t, []string{"e2", "e3"}, retry.EntryIDs)

	res2, err := Grade(retry, []Answer{choiceAnswer(1), choiceAnswer(0)}, GradeOptions{})
	require.NoError(t, err)
	assert.Equal(t, 100, res2.Score)
}
