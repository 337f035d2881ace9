package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/lingo/internal/db"
	"github.com/hpungsan/lingo/internal/errors"
	"github.com/hpungsan/lingo/internal/vocab"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID string
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	vocab.Entry          // embedded (copy, not pointer)
	SuccessRate  float64 `json:"success_rate"`
	LastLearning *int64  `json:"last_learning,omitempty"`
}

// Fetch retrieves an entry and its full learning history.
func Fetch(ctx context.Context, database *sql.DB, input FetchInput) (*FetchOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	e, err := db.GetEntryByID(ctx, database, id)
	if err != nil {
		return nil, err
	}

	out := &FetchOutput{
		Entry:       *e,
		SuccessRate: e.SuccessRate(),
	}
	if last, ok := e.LastLearningDate(); ok {
		out.LastLearning = &last
	}
	return out, nil
}
