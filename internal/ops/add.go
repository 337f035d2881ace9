package ops

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/lingo/internal/db"
	"github.com/hpungsan/lingo/internal/errors"
	"github.com/hpungsan/lingo/internal/vocab"
)

// AddMode controls what happens when the word pair already exists.
type AddMode string

const (
	AddModeError   AddMode = "error"   // default: fail on duplicate pair
	AddModeReplace AddMode = "replace" // overwrite the existing entry's fields, keep its history
)

// AddInput contains parameters for the Add operation.
type AddInput struct {
	TargetWord     string // required
	NativeWord     string // required
	Categories     []string
	SampleSentence *string
	Notes          *string
	Source         *string // default: "manual"
	IsFavorite     bool
	Mode           AddMode // default: AddModeError
}

// AddOutput contains the result of the Add operation.
type AddOutput struct {
	ID       string `json:"id"`
	Created  bool   `json:"created"`
	Replaced bool   `json:"replaced"`
}

// Add creates a vocabulary entry, or replaces the existing one for the same pair.
func Add(ctx context.Context, database *sql.DB, input AddInput) (*AddOutput, error) {
	target, native, err := validateWords(input.TargetWord, input.NativeWord)
	if err != nil {
		return nil, err
	}
	categories, err := validateCategories(input.Categories)
	if err != nil {
		return nil, err
	}
	if input.Mode == "" {
		input.Mode = AddModeError
	}
	if input.Mode != AddModeError && input.Mode != AddModeReplace {
		return nil, errors.NewInvalidRequest("mode must be one of: error, replace")
	}

	source := cleanOptionalString(input.Source)
	if source == nil {
		manual := "manual"
		source = &manual
	}

	now := time.Now().Unix()
	e := &vocab.Entry{
		TargetWord:      target,
		NativeWord:      native,
		Categories:      categories,
		SampleSentence:  cleanOptionalString(input.SampleSentence),
		Notes:           cleanOptionalString(input.Notes),
		Source:          source,
		DateAdded:       now,
		UpdatedAt:       now,
		IsFavorite:      input.IsFavorite,
		LearningHistory: []vocab.Attempt{},
	}

	existing, err := db.FindByPair(ctx, database, target, native)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		if input.Mode == AddModeError {
			return nil, errors.NewEntryAlreadyExists(target, native, existing.ID)
		}
		e.ID = existing.ID
		if err := db.UpdateEntry(ctx, database, e); err != nil {
			return nil, err
		}
		return &AddOutput{ID: existing.ID, Replaced: true}, nil
	}

	if e.ID, err = generateULID(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := db.InsertEntry(ctx, database, e); err != nil {
		// A concurrent add of the same pair won the race
		if err == db.ErrUniqueConstraint {
			if other, findErr := db.FindByPair(ctx, database, target, native); findErr == nil {
				return nil, errors.NewEntryAlreadyExists(target, native, other.ID)
			}
		}
		return nil, err
	}

	return &AddOutput{ID: e.ID, Created: true}, nil
}
