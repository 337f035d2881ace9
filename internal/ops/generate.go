package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/hpungsan/lingo/internal/config"
	"github.com/hpungsan/lingo/internal/db"
	"github.com/hpungsan/lingo/internal/errors"
	"github.com/hpungsan/lingo/internal/exercise"
	"github.com/hpungsan/lingo/internal/llm"
	"github.com/hpungsan/lingo/internal/vocab"
)

// Default entry selection for exercises: least practiced words first.
const (
	DefaultExerciseSort  = string(vocab.SortLearningProgress)
	DefaultExerciseOrder = string(vocab.Asc)
	MaxExerciseSize      = 30
)

// GenerateInput contains parameters for the Generate operation.
type GenerateInput struct {
	Kind string // required; any kind except flashcard

	// EntryIDs selects entries explicitly; filters and sort are ignored when set
	EntryIDs []string

	Category      *string
	FavoritesOnly bool
	Search        *string
	Sort          string // default: learning_progress
	Order         string // default: asc

	Size       int // entries to draw, default: cfg.ExerciseSize, max: 30
	Count      int // items to request, default: one per entry
	Difficulty string
}

// GenerateOutput contains the result of the Generate operation.
type GenerateOutput struct {
	Exercise *exercise.Exercise `json:"exercise"`
}

// Generate selects entries, asks the model for an exercise, validates it and
// stores it. The stored exercise is what SubmitAnswers grades against.
func Generate(ctx context.Context, database *sql.DB, cfg *config.Config, client llm.Client, input GenerateInput) (*GenerateOutput, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	kind, err := vocab.ParseExerciseKind(input.Kind)
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}
	if _, ok := exercise.ShapeOf(kind); !ok {
		return nil, errors.NewInvalidRequest("exercises of kind " + string(kind) + " are not generated")
	}
	if client == nil {
		return nil, errors.NewLLMUnavailable(llm.APIKeyEnv + " is not set")
	}

	size := input.Size
	if size <= 0 {
		size = cfg.ExerciseSize
	}
	size = min(size, MaxExerciseSize)

	entries, err := selectEntries(ctx, database, cfg, input, size)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.NewInvalidRequest("no entries match the selection")
	}

	prompt, err := exercise.BuildPrompt(kind, entries, exercise.PromptOptions{
		Count:          input.Count,
		TargetLanguage: cfg.TargetLanguage,
		NativeLanguage: cfg.NativeLanguage,
		Difficulty:     input.Difficulty,
	})
	if err != nil {
		return nil, errors.NewInvalidRequest(err.Error())
	}

	raw, err := client.GenerateJSON(ctx, prompt.System, prompt.User)
	if err != nil {
		return nil, mapLLMError("generate", cfg.LLM.MaxRequests, err)
	}

	ex, err := exercise.Parse(kind, raw, entries)
	if err != nil {
		return nil, mapLLMError("generate", cfg.LLM.MaxRequests, err)
	}

	if err := persistExercise(ctx, database, ex); err != nil {
		return nil, err
	}
	return &GenerateOutput{Exercise: ex}, nil
}

// selectEntries returns up to size entries for an exercise.
func selectEntries(ctx context.Context, database *sql.DB, cfg *config.Config, input GenerateInput, size int) ([]vocab.Entry, error) {
	if len(input.EntryIDs) > 0 {
		if len(input.EntryIDs) > MaxExerciseSize {
			return nil, errors.NewInvalidRequest("too many entry_ids (max 30)")
		}
		seen := make(map[string]bool)
		entries := make([]vocab.Entry, 0, len(input.EntryIDs))
		for _, id := range input.EntryIDs {
			id = strings.TrimSpace(id)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			e, err := db.GetEntryByID(ctx, database, id)
			if err != nil {
				return nil, err
			}
			entries = append(entries, *e)
		}
		return entries, nil
	}

	key, order, err := resolveSort(input.Sort, input.Order, DefaultExerciseSort, DefaultExerciseOrder)
	if err != nil {
		return nil, err
	}
	all, err := db.ListEntries(ctx, database)
	if err != nil {
		return nil, err
	}
	filters := vocab.Filters{
		Category:      cleanOptionalString(input.Category),
		FavoritesOnly: input.FavoritesOnly,
		SearchTerm:    input.Search,
	}
	matched := pipeline(cfg).Query(all, filters, key, order)
	if len(matched) > size {
		matched = matched[:size]
	}
	return matched, nil
}

// persistExercise assigns an id and creation time and stores ex.
func persistExercise(ctx context.Context, database *sql.DB, ex *exercise.Exercise) error {
	id, err := generateULID()
	if err != nil {
		return errors.NewInternal(err)
	}
	ex.ID = id
	ex.CreatedAt = time.Now().Unix()
	return db.InsertExercise(ctx, database, ex)
}
