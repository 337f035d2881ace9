package vocab

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Entry is one vocabulary word pair with its learning metadata.
type Entry struct {
	// ID is a ULID that uniquely identifies this entry
	ID string `json:"id"`

	// TargetWord is the word in the language being learned
	TargetWord string `json:"target_word"`

	// NativeWord is the translation in the learner's language
	NativeWord string `json:"native_word"`

	// Categories are free-text labels, kept in insertion order for display
	Categories []string `json:"categories"`

	SampleSentence *string `json:"sample_sentence,omitempty"`
	Notes          *string `json:"notes,omitempty"`

	// Source indicates where the entry came from (e.g., "manual", "sheet", "import")
	Source *string `json:"source,omitempty"`

	// DateAdded is the Unix timestamp of creation; it never changes
	DateAdded int64 `json:"date_added"`

	// UpdatedAt is the Unix timestamp of the last edit
	UpdatedAt int64 `json:"updated_at"`

	IsFavorite bool `json:"is_favorite"`

	// LearningHistory is append-only, oldest first
	LearningHistory []Attempt `json:"learning_history"`
}

// Attempt records one practice result for an entry.
type Attempt struct {
	ExerciseKind     ExerciseKind `json:"exercise_kind"`
	Success          bool         `json:"success"`
	Date             int64        `json:"date"`
	TimeSpentSeconds int          `json:"time_spent_seconds"`
}

// SuccessRate returns successes/attempts, or 0 when there is no history.
func (e *Entry) SuccessRate() float64 {
	if len(e.LearningHistory) == 0 {
		return 0
	}
	successes := 0
	for _, a := range e.LearningHistory {
		if a.Success {
			successes++
		}
	}
	return float64(successes) / float64(len(e.LearningHistory))
}

// LastLearningDate returns the latest attempt date. ok is false when there is no history.
func (e *Entry) LastLearningDate() (date int64, ok bool) {
	for _, a := range e.LearningHistory {
		if !ok || a.Date > date {
			date = a.Date
			ok = true
		}
	}
	return date, ok
}

// HasCategory reports whether the entry carries the exact label.
func (e *Entry) HasCategory(category string) bool {
	return slices.Contains(e.Categories, category)
}

// WithAttempt returns a copy of the entry with a appended to its history.
// The receiver's history slice is left untouched.
func (e Entry) WithAttempt(a Attempt) Entry {
	history := make([]Attempt, 0, len(e.LearningHistory)+1)
	history = append(history, e.LearningHistory...)
	e.LearningHistory = append(history, a)
	return e
}

// ExerciseKind names a practice activity.
type ExerciseKind string

const (
	KindFlashcard      ExerciseKind = "flashcard"
	KindGapFill        ExerciseKind = "gap_fill"
	KindMatching       ExerciseKind = "matching"
	KindTranslation    ExerciseKind = "translation"
	KindMultipleChoice ExerciseKind = "multiple_choice"
	KindWordFormation  ExerciseKind = "word_formation"
	KindSynonymAntonym ExerciseKind = "synonym_antonym"
	KindWordDefinition ExerciseKind = "word_definition"
)

// ExerciseKinds lists every kind in display order.
var ExerciseKinds = []ExerciseKind{
	KindFlashcard,
	KindGapFill,
	KindMatching,
	KindTranslation,
	KindMultipleChoice,
	KindWordFormation,
	KindSynonymAntonym,
	KindWordDefinition,
}

// ParseExerciseKind validates s (case-insensitive, '-' accepted for '_').
func ParseExerciseKind(s string) (ExerciseKind, error) {
	k := ExerciseKind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	if slices.Contains(ExerciseKinds, k) {
		return k, nil
	}
	return "", fmt.Errorf("unknown exercise kind %q", s)
}

// whitespaceRegex matches one or more whitespace characters
var whitespaceRegex = regexp.MustCompile(`\s+`)

// Normalize trims, lowercases, and collapses internal whitespace.
// Word pairs are unique by their normalized forms.
func Normalize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return whitespaceRegex.ReplaceAllString(s, " ")
}

// CleanCategories trims labels, drops empty ones, and removes duplicates.
// Labels are case-sensitive; the first occurrence wins and order is preserved.
func CleanCategories(categories []string) []string {
	seen := make(map[string]bool, len(categories))
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
