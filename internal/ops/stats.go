package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/lingo/internal/db"
)

// StatsOutput summarizes the vocabulary and practice history.
type StatsOutput struct {
	Entries     int `json:"entries"`
	Favorites   int `json:"favorites"`
	WithHistory int `json:"with_history"`
	Categories  int `json:"categories"`
	Attempts    int `json:"attempts"`
	Successes   int `json:"successes"`

	// AverageSuccessRate is the mean per-entry rate over entries with history, in [0, 1]
	AverageSuccessRate float64 `json:"average_success_rate"`

	AttemptsByKind map[string]int `json:"attempts_by_kind"`
}

// Stats aggregates counts over all entries.
func Stats(ctx context.Context, database *sql.DB) (*StatsOutput, error) {
	entries, err := db.ListEntries(ctx, database)
	if err != nil {
		return nil, err
	}

	out := &StatsOutput{
		Entries:        len(entries),
		AttemptsByKind: make(map[string]int),
	}
	categories := make(map[string]bool)
	rateSum := 0.0

	for i := range entries {
		e := &entries[i]
		if e.IsFavorite {
			out.Favorites++
		}
		for _, c := range e.Categories {
			categories[c] = true
		}
		if len(e.LearningHistory) == 0 {
			continue
		}
		out.WithHistory++
		rateSum += e.SuccessRate()
		for _, a := range e.LearningHistory {
			out.Attempts++
			if a.Success {
				out.Successes++
			}
			out.AttemptsByKind[string(a.ExerciseKind)]++
		}
	}

	out.Categories = len(categories)
	if out.WithHistory > 0 {
		out.AverageSuccessRate = rateSum / float64(out.WithHistory)
	}
	return out, nil
}
