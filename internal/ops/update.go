package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/lingo/internal/db"
	"github.com/hpungsan/lingo/internal/errors"
)

// UpdateInput contains parameters for the Update operation.
type UpdateInput struct {
	ID string // required

	// Editable fields (nil = don't change). An empty SampleSentence or Notes clears it.
	TargetWord     *string
	NativeWord     *string
	Categories     *[]string
	SampleSentence *string
	Notes          *string
	IsFavorite     *bool
}

// UpdateOutput contains the result of the Update operation.
type UpdateOutput struct {
	ID        string `json:"id"`
	UpdatedAt int64  `json:"updated_at"`
}

// Update modifies an existing entry. Learning history and date_added never change.
func Update(ctx context.Context, database *sql.DB, input UpdateInput) (*UpdateOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	if input.TargetWord == nil && input.NativeWord == nil && input.Categories == nil &&
		input.SampleSentence == nil && input.Notes == nil && input.IsFavorite == nil {
		return nil, errors.NewInvalidRequest("at least one editable field must be provided")
	}

	e, err := db.GetEntryByID(ctx, database, id)
	if err != nil {
		return nil, err
	}

	target, native := e.TargetWord, e.NativeWord
	if input.TargetWord != nil {
		target = *input.TargetWord
	}
	if input.NativeWord != nil {
		native = *input.NativeWord
	}
	if e.TargetWord, e.NativeWord, err = validateWords(target, native); err != nil {
		return nil, err
	}

	if input.Categories != nil {
		if e.Categories, err = validateCategories(*input.Categories); err != nil {
			return nil, err
		}
	}
	if input.SampleSentence != nil {
		e.SampleSentence = cleanOptionalString(input.SampleSentence)
	}
	if input.Notes != nil {
		e.Notes = cleanOptionalString(input.Notes)
	}
	if input.IsFavorite != nil {
		e.IsFavorite = *input.IsFavorite
	}

	if err := db.UpdateEntry(ctx, database, e); err != nil {
		if err == db.ErrUniqueConstraint {
			other, findErr := db.FindByPair(ctx, database, e.TargetWord, e.NativeWord)
			if findErr == nil {
				return nil, errors.NewEntryAlreadyExists(e.TargetWord, e.NativeWord, other.ID)
			}
		}
		return nil, err
	}

	return &UpdateOutput{
		ID:        e.ID,
		UpdatedAt: e.UpdatedAt,
	}, nil
}
