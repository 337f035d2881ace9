package ops

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"
	"time"

	"github.com/hpungsan/lingo/internal/config"
	"github.com/hpungsan/lingo/internal/db"
	"github.com/hpungsan/lingo/internal/errors"
	"github.com/hpungsan/lingo/internal/exercise"
	"github.com/hpungsan/lingo/internal/vocab"
)

// SubmitInput contains parameters for the Submit operation.
type SubmitInput struct {
	ExerciseID string // required
	Answers    []exercise.Answer

	// TimeSpentSeconds is the whole session; it is split evenly across recorded attempts
	TimeSpentSeconds int

	// DryRun grades without touching learning history
	DryRun bool

	// Retry also creates a retry exercise from the mistakes
	Retry bool
}

// SubmitOutput contains the result of the Submit operation.
type SubmitOutput struct {
	Result   *exercise.Result   `json:"result"`
	Recorded int                `json:"recorded"`
	Retry    *exercise.Exercise `json:"retry,omitempty"`
}

// Submit grades answers for a stored exercise and appends one attempt per
// item to the history of the entry the item was generated from.
// Items without a linked entry, or whose entry has since been deleted, are not recorded.
func Submit(ctx context.Context, database *sql.DB, cfg *config.Config, input SubmitInput) (*SubmitOutput, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	id := strings.TrimSpace(input.ExerciseID)
	if id == "" {
		return nil, errors.NewInvalidRequest("exercise_id is required")
	}
	if input.TimeSpentSeconds < 0 {
		return nil, errors.NewInvalidRequest("time_spent_seconds must not be negative")
	}

	ex, err := db.GetExercise(ctx, database, id)
	if err != nil {
		return nil, err
	}

	result, err := exercise.Grade(ex, input.Answers, exercise.GradeOptions{TypoTolerance: cfg.TypoTolerance})
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	out := &SubmitOutput{Result: result}
	if !input.DryRun {
		if out.Recorded, err = recordResult(ctx, database, ex.Kind, result, input.TimeSpentSeconds); err != nil {
			return nil, err
		}
	}

	if input.Retry && len(result.Mistakes) > 0 {
		retry, err := exercise.Retry(ex, result)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		if err := persistExercise(ctx, database, retry); err != nil {
			return nil, err
		}
		out.Retry = retry
	}

	return out, nil
}

// recordResult appends the graded items to learning history in one transaction.
func recordResult(ctx context.Context, database *sql.DB, kind vocab.ExerciseKind, result *exercise.Result, timeSpent int) (int, error) {
	linked := 0
	for _, item := range result.Items {
		if item.EntryID != "" {
			linked++
		}
	}
	if linked == 0 {
		return 0, nil
	}

	perItem := timeSpent / linked
	now := time.Now().Unix()

	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	defer tx.Rollback() //nolint:errcheck

	recorded := 0
	for _, item := range result.Items {
		if item.EntryID == "" {
			continue
		}
		err := db.AppendAttempt(ctx, tx, item.EntryID, vocab.Attempt{
			ExerciseKind:     kind,
			Success:          item.Correct,
			Date:             now,
			TimeSpentSeconds: perItem,
		})
		if errors.Is(err, errors.ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		recorded++
	}

	if err := tx.Commit(); err != nil {
		return 0, errors.NewInternal(err)
	}
	return recorded, nil
}

// RetryInput contains parameters for the RetryMistakes operation.
type RetryInput struct {
	ExerciseID string // required
	Answers    []exercise.Answer
}

// RetryOutput contains the result of the RetryMistakes operation.
type RetryOutput struct {
	Exercise *exercise.Exercise `json:"exercise"`
	Mistakes int                `json:"mistakes"`
}

// RetryMistakes grades answers without recording them and stores a new
// exercise holding only the items that were wrong.
func RetryMistakes(ctx context.Context, database *sql.DB, cfg *config.Config, input RetryInput) (*RetryOutput, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	id := strings.TrimSpace(input.ExerciseID)
	if id == "" {
		return nil, errors.NewInvalidRequest("exercise_id is required")
	}

	ex, err := db.GetExercise(ctx, database, id)
	if err != nil {
		return nil, err
	}
	result, err := exercise.Grade(ex, input.Answers, exercise.GradeOptions{TypoTolerance: cfg.TypoTolerance})
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	retry, err := exercise.Retry(ex, result)
	if stderrors.Is(err, exercise.ErrNoMistakes) {
		return nil, errors.NewInvalidRequest("no mistakes to retry")
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := persistExercise(ctx, database, retry); err != nil {
		return nil, err
	}

	return &RetryOutput{Exercise: retry, Mistakes: len(result.Mistakes)}, nil
}
