package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/hpungsan/lingo/internal/db"
	"github.com/hpungsan/lingo/internal/errors"
	"github.com/hpungsan/lingo/internal/exercise"
)

// GetExerciseInput contains parameters for the GetExercise operation.
type GetExerciseInput struct {
	ID string
}

// GetExercise loads a stored exercise.
func GetExercise(ctx context.Context, database *sql.DB, input GetExerciseInput) (*exercise.Exercise, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	return db.GetExercise(ctx, database, id)
}

// ListExercisesInput contains parameters for the ListExercises operation.
type ListExercisesInput struct {
	Limit int // default: 20, max: 100
}

// ExerciseSummary describes a stored exercise without its items.
type ExerciseSummary struct {
	ID        string  `json:"id"`
	Kind      string  `json:"kind"`
	CreatedAt int64   `json:"created_at"`
	ParentID  *string `json:"parent_id,omitempty"`
	Items     int     `json:"items"`
	Entries   int     `json:"entries"`
}

// ListExercisesOutput contains the result of the ListExercises operation.
type ListExercisesOutput struct {
	Items []ExerciseSummary `json:"items"`
}

// ListExercises returns the most recent exercises, newest first.
func ListExercises(ctx context.Context, database *sql.DB, input ListExercisesInput) (*ListExercisesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = DefaultExercisesLimit
	}
	limit = min(limit, MaxExercisesLimit)

	exercises, err := db.ListExercises(ctx, database, limit)
	if err != nil {
		return nil, err
	}

	items := make([]ExerciseSummary, 0, len(exercises))
	for i := range exercises {
		ex := &exercises[i]
		items = append(items, ExerciseSummary{
			ID:        ex.ID,
			Kind:      string(ex.Kind),
			CreatedAt: ex.CreatedAt,
			ParentID:  ex.ParentID,
			Items:     ex.Len(),
			Entries:   len(ex.EntryIDs),
		})
	}
	return &ListExercisesOutput{Items: items}, nil
}
