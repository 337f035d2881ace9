package exercise

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/hpungsan/lingo/internal/fuzzy"
	"github.com/hpungsan/lingo/internal/vocab"
)

// Answer is a learner's response to one item. Text answers gap-fill and
// translation items; Choice answers multiple-choice items (option index) and
// matching pairs (index into Matching.Options). A nil answer counts as wrong.
type Answer struct {
	Text   *string `json:"text,omitempty"`
	Choice *int    `json:"choice,omitempty"`
}

// GradeOptions tunes grading.
type GradeOptions struct {
	// TypoTolerance accepts a text answer whose similarity to the expected
	// answer is at least this value. 0 requires an exact normalized match.
	TypoTolerance float64
}

// ItemResult is the outcome for one item.
type ItemResult struct {
	Index    int    `json:"index"`
	EntryID  string `json:"entry_id,omitempty"`
	Correct  bool   `json:"correct"`
	Given    string `json:"given"`
	Expected string `json:"expected"`
}

// Result summarizes a graded exercise.
type Result struct {
	ExerciseID string             `json:"exercise_id"`
	Kind       vocab.ExerciseKind `json:"kind"`
	Correct    int                `json:"correct"`
	Total      int                `json:"total"`

	// Score is the percentage of correct items, 0-100
	Score int `json:"score"`

	Items []ItemResult `json:"items"`

	// Mistakes are the indices of wrong items, ascending
	Mistakes []int `json:"mistakes"`
}

// Grade scores answers against ex. answers[i] answers item i; missing trailing
// answers count as wrong. More answers than items is an error.
func Grade(ex *Exercise, answers []Answer, opts GradeOptions) (*Result, error) {
	if err := ex.Validate(); err != nil {
		return nil, err
	}
	total := ex.Len()
	if len(answers) > total {
		return nil, fmt.Errorf("got %d answers for %d items", len(answers), total)
	}

	res := &Result{
		ExerciseID: ex.ID,
		Kind:       ex.Kind,
		Total:      total,
		Items:      make([]ItemResult, 0, total),
		Mistakes:   []int{},
	}

	for i := 0; i < total; i++ {
		var a Answer
		if i < len(answers) {
			a = answers[i]
		}
		item := gradeItem(ex, i, a, opts)
		item.Index = i
		item.EntryID = ex.ItemEntryID(i)
		if item.Correct {
			res.Correct++
		} else {
			res.Mistakes = append(res.Mistakes, i)
		}
		res.Items = append(res.Items, item)
	}

	res.Score = res.Correct * 100 / total
	return res, nil
}

func gradeItem(ex *Exercise, i int, a Answer, opts GradeOptions) ItemResult {
	shape, _ := ShapeOf(ex.Kind)
	switch shape {
	case ShapeGapFill:
		expected := ex.GapFill.Items[i].Answer
		return textResult(a, expected, opts)
	case ShapeTranslation:
		expected := ex.Translation.Items[i].Answer
		return textResult(a, expected, opts)
	case ShapeMultipleChoice:
		item := ex.MultipleChoice.Items[i]
		return choiceResult(a, item.Options, item.Options[item.CorrectIndex])
	case ShapeMatching:
		m := ex.Matching
		return choiceResult(a, m.Options, m.Pairs[i].Right)
	}
	return ItemResult{}
}

func textResult(a Answer, expected string, opts GradeOptions) ItemResult {
	r := ItemResult{Expected: expected}
	if a.Text == nil {
		return r
	}
	r.Given = *a.Text
	r.Correct = TextMatches(*a.Text, expected, opts.TypoTolerance)
	return r
}

// choiceResult compares by option text so duplicate-free option lists grade by identity.
func choiceResult(a Answer, options []string, expected string) ItemResult {
	r := ItemResult{Expected: expected}
	if a.Choice == nil {
		return r
	}
	idx := *a.Choice
	if idx < 0 || idx >= len(options) {
		r.Given = strconv.Itoa(idx)
		return r
	}
	r.Given = options[idx]
	r.Correct = options[idx] == expected
	return r
}

// TextMatches compares a typed answer with the expected one ignoring case,
// surrounding and repeated whitespace, and punctuation. With tolerance > 0,
// answers at least that similar also match.
func TextMatches(given, expected string, tolerance float64) bool {
	g := normalizeAnswer(given)
	e := normalizeAnswer(expected)
	if g == "" {
		return false
	}
	if g == e {
		return true
	}
	return tolerance > 0 && fuzzy.Similarity(g, e) >= tolerance
}

func normalizeAnswer(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) {
			return -1
		}
		return r
	}, s)
	return vocab.Normalize(s)
}
