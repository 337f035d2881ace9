package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/lingo/internal/db"
	"github.com/hpungsan/lingo/internal/errors"
	"github.com/hpungsan/lingo/internal/vocab"
)

// RecordInput contains parameters for the Record operation.
type RecordInput struct {
	ID               string // required
	ExerciseKind     string // required
	Success          bool
	TimeSpentSeconds int
	Date             int64 // default: now
}

// RecordOutput contains the result of the Record operation.
type RecordOutput struct {
	ID          string  `json:"id"`
	Attempts    int     `json:"attempts"`
	SuccessRate float64 `json:"success_rate"`
}

// Record appends one practice attempt to an entry's history.
func Record(ctx context.Context, database *sql.DB, input RecordInput) (*RecordOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	kind, err := vocab.ParseExerciseKind(input.ExerciseKind)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if input.TimeSpentSeconds < 0 {
		return nil, errors.NewInvalidRequest("time_spent_seconds must not be negative")
	}

	date := input.Date
	if date == 0 {
		date = time.Now().Unix()
	}

	attempt := vocab.Attempt{
		ExerciseKind:     kind,
		Success:          input.Success,
		Date:             date,
		TimeSpentSeconds: input.TimeSpentSeconds,
	}
	if err := db.AppendAttempt(ctx, database, id, attempt); err != nil {
		return nil, err
	}

	e, err := db.GetEntryByID(ctx, database, id)
	if err != nil {
		return nil, err
	}

	return &RecordOutput{
		ID:          id,
		Attempts:    len(e.LearningHistory),
		SuccessRate: e.SuccessRate(),
	}, nil
}
