package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/lingo/internal/db"
	"github.com/hpungsan/lingo/internal/errors"
)

// FavoriteInput contains parameters for the Favorite operation.
type FavoriteInput struct {
	ID       string
	Favorite *bool // nil toggles
}

// FavoriteOutput contains the result of the Favorite operation.
type FavoriteOutput struct {
	ID         string `json:"id"`
	IsFavorite bool   `json:"is_favorite"`
	UpdatedAt  int64  `json:"updated_at"`
}

// Favorite sets or toggles an entry's favorite flag.
func Favorite(ctx context.Context, database *sql.DB, input FavoriteInput) (*FavoriteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	var favorite bool
	if input.Favorite != nil {
		favorite = *input.Favorite
	} else {
		e, err := db.GetEntryByID(ctx, database, id)
		if err != nil {
			return nil, err
		}
		favorite = !e.IsFavorite
	}

	updatedAt, err := db.SetFavorite(ctx, database, id, favorite)
	if err != nil {
		return nil, err
	}

	return &FavoriteOutput{
		ID:         id,
		IsFavorite: favorite,
		UpdatedAt:  updatedAt,
	}, nil
}
