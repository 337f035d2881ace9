package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/lingo/internal/db"
	"github.com/hpungsan/lingo/internal/vocab"
)

// CategoriesInput contains parameters for the Categories operation.
type CategoriesInput struct {
	// Name, when set, also returns the entries carrying that category
	Name *string
}

// CategoriesOutput contains the result of the Categories operation.
type CategoriesOutput struct {
	Categories []vocab.CategoryCount `json:"categories"`
	Entries    []vocab.Summary       `json:"entries,omitempty"`
}

// Categories lists every category with its entry count, sorted by name.
func Categories(ctx context.Context, database *sql.DB, input CategoriesInput) (*CategoriesOutput, error) {
	entries, err := db.ListEntries(ctx, database)
	if err != nil {
		return nil, err
	}

	out := &CategoriesOutput{
		Categories: vocab.CategoryCounts(entries),
	}

	if name := cleanOptionalString(input.Name); name != nil {
		matched := vocab.EntriesByCategory(entries, *name)
		out.Entries = make([]vocab.Summary, 0, len(matched))
		for i := range matched {
			out.Entries = append(out.Entries, matched[i].ToSummary())
		}
	}

	return out, nil
}
