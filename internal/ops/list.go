package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/lingo/internal/config"
	"github.com/hpungsan/lingo/internal/db"
	"github.com/hpungsan/lingo/internal/vocab"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Category       *string
	FavoritesOnly  bool
	HasHistoryOnly bool
	Search         *string
	Sort           string // default: cfg.DefaultSort
	Order          string // default: cfg.DefaultOrder
	Limit          int    // default: 20, max: 100
	Offset         int    // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []vocab.Summary `json:"items"`
	Pagination Pagination      `json:"pagination"`
	Sort       string          `json:"sort"`
}

// List filters and sorts the vocabulary and returns one page of summaries.
func List(ctx context.Context, database *sql.DB, cfg *config.Config, input ListInput) (*ListOutput, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	key, order, err := resolveSort(input.Sort, input.Order, cfg.DefaultSort, cfg.DefaultOrder)
	if err != nil {
		return nil, err
	}

	entries, err := db.ListEntries(ctx, database)
	if err != nil {
		return nil, err
	}

	filters := vocab.Filters{
		Category:       cleanOptionalString(input.Category),
		FavoritesOnly:  input.FavoritesOnly,
		HasHistoryOnly: input.HasHistoryOnly,
		SearchTerm:     input.Search,
	}
	matched := pipeline(cfg).Query(entries, filters, key, order)

	page, pagination := paginate(matched, input.Limit, input.Offset)
	items := make([]vocab.Summary, 0, len(page))
	for i := range page {
		items = append(items, page[i].ToSummary())
	}

	return &ListOutput{
		Items:      items,
		Pagination: pagination,
		Sort:       string(key) + "_" + string(order),
	}, nil
}
