// Package exercise generates, validates, grades, and retries practice exercises
// built from vocabulary entries.
//
// An Exercise is a tagged union: Kind selects exactly one payload through
// Shape. Code dispatches on Kind, never on which payload field happens to be set.
package exercise

import (
	"errors"
	"fmt"

	"github.com/hpungsan/lingo/internal/vocab"
)

// GapMarker marks the blank in gap-fill sentences.
const GapMarker = "___"

// ErrInvalidExercise wraps every validation failure of generated content.
var ErrInvalidExercise = errors.New("invalid exercise")

// Shape is the payload layout an exercise kind uses.
type Shape string

const (
	ShapeGapFill        Shape = "gap_fill"
	ShapeMatching       Shape = "matching"
	ShapeTranslation    Shape = "translation"
	ShapeMultipleChoice Shape = "multiple_choice"
)

// ShapeOf maps a kind to its payload shape. Flashcards are practiced without
// generated content, so they report ok=false.
func ShapeOf(kind vocab.ExerciseKind) (Shape, bool) {
	switch kind {
	case vocab.KindGapFill, vocab.KindWordFormation:
		return ShapeGapFill, true
	case vocab.KindMatching:
		return ShapeMatching, true
	case vocab.KindTranslation:
		return ShapeTranslation, true
	case vocab.KindMultipleChoice, vocab.KindSynonymAntonym, vocab.KindWordDefinition:
		return ShapeMultipleChoice, true
	default:
		return "", false
	}
}

// GeneratableKinds lists the kinds that can be generated.
func GeneratableKinds() []vocab.ExerciseKind {
	var out []vocab.ExerciseKind
	for _, k := range vocab.ExerciseKinds {
		if _, ok := ShapeOf(k); ok {
			out = append(out, k)
		}
	}
	return out
}

// Exercise is one generated practice round.
type Exercise struct {
	ID        string             `json:"id"`
	Kind      vocab.ExerciseKind `json:"kind"`
	CreatedAt int64              `json:"created_at"`

	// ParentID is the exercise this one retries, if any
	ParentID *string `json:"parent_id,omitempty"`

	// EntryIDs are the entries the exercise was generated from
	EntryIDs []string `json:"entry_ids"`

	GapFill        *GapFill        `json:"gap_fill,omitempty"`
	Matching       *Matching       `json:"matching,omitempty"`
	Translation    *Translation    `json:"translation,omitempty"`
	MultipleChoice *MultipleChoice `json:"multiple_choice,omitempty"`
}

// GapFill holds sentences with one blank each. Word formation uses the same
// layout with a derived form of the word as the answer.
type GapFill struct {
	Items []GapFillItem `json:"items"`
}

type GapFillItem struct {
	EntryID  string  `json:"entry_id"`
	Sentence string  `json:"sentence"`
	Answer   string  `json:"answer"`
	Hint     *string `json:"hint,omitempty"`
}

// Matching pairs target words with translations. Answers index into Options.
type Matching struct {
	Pairs []MatchingPair `json:"pairs"`

	// Options is the right-hand column in display order
	Options []string `json:"options"`
}

type MatchingPair struct {
	EntryID string `json:"entry_id"`
	Left    string `json:"left"`
	Right   string `json:"right"`
}

// Translation asks for a sentence in the target language.
type Translation struct {
	Items []TranslationItem `json:"items"`
}

type TranslationItem struct {
	EntryID string `json:"entry_id"`
	Source  string `json:"source"`
	Answer  string `json:"answer"`
}

// MultipleChoice also carries synonym/antonym and definition exercises.
type MultipleChoice struct {
	Items []MultipleChoiceItem `json:"items"`
}

type MultipleChoiceItem struct {
	EntryID      string   `json:"entry_id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  *string  `json:"explanation,omitempty"`
}

// Len returns the number of gradable items.
func (ex *Exercise) Len() int {
	shape, _ := ShapeOf(ex.Kind)
	switch shape {
	case ShapeGapFill:
		if ex.GapFill != nil {
			return len(ex.GapFill.Items)
		}
	case ShapeMatching:
		if ex.Matching != nil {
			return len(ex.Matching.Pairs)
		}
	case ShapeTranslation:
		if ex.Translation != nil {
			return len(ex.Translation.Items)
		}
	case ShapeMultipleChoice:
		if ex.MultipleChoice != nil {
			return len(ex.MultipleChoice.Items)
		}
	}
	return 0
}

// ItemEntryID returns the entry linked to item i, or "" when unlinked.
func (ex *Exercise) ItemEntryID(i int) string {
	if i < 0 || i >= ex.Len() {
		return ""
	}
	shape, _ := ShapeOf(ex.Kind)
	switch shape {
	case ShapeGapFill:
		return ex.GapFill.Items[i].EntryID
	case ShapeMatching:
		return ex.Matching.Pairs[i].EntryID
	case ShapeTranslation:
		return ex.Translation.Items[i].EntryID
	case ShapeMultipleChoice:
		return ex.MultipleChoice.Items[i].EntryID
	}
	return ""
}

// Validate checks that exactly the payload selected by Kind is present.
func (ex *Exercise) Validate() error {
	shape, ok := ShapeOf(ex.Kind)
	if !ok {
		return fmt.Errorf("%w: kind %q has no generated content", ErrInvalidExercise, ex.Kind)
	}
	set := map[Shape]bool{
		ShapeGapFill:        ex.GapFill != nil,
		ShapeMatching:       ex.Matching != nil,
		ShapeTranslation:    ex.Translation != nil,
		ShapeMultipleChoice: ex.MultipleChoice != nil,
	}
	for s, present := range set {
		if s == shape && !present {
			return fmt.Errorf("%w: %s payload missing", ErrInvalidExercise, shape)
		}
		if s != shape && present {
			return fmt.Errorf("%w: unexpected %s payload for kind %s", ErrInvalidExercise, s, ex.Kind)
		}
	}
	if ex.Len() == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidExercise)
	}
	return nil
}
