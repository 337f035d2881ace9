package exercise

import (
	"errors"
	"slices"
)

// ErrNoMistakes is returned by Retry when every item was answered correctly.
var ErrNoMistakes = errors.New("no mistakes to retry")

// Retry builds a new exercise holding only the items res marks as mistakes,
// in their original order. The result has no ID or CreatedAt; ParentID points at ex.
func Retry(ex *Exercise, res *Result) (*Exercise, error) {
	if err := ex.Validate(); err != nil {
		return nil, err
	}
	if res == nil || len(res.Mistakes) == 0 {
		return nil, ErrNoMistakes
	}

	var keep []int
	for _, i := range res.Mistakes {
		if i >= 0 && i < ex.Len() && !slices.Contains(keep, i) {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, ErrNoMistakes
	}
	slices.Sort(keep)

	out := &Exercise{Kind: ex.Kind}
	if ex.ID != "" {
		parent := ex.ID
		out.ParentID = &parent
	}

	shape, _ := ShapeOf(ex.Kind)
	switch shape {
	case ShapeGapFill:
		out.GapFill = &GapFill{Items: pick(ex.GapFill.Items, keep)}
	case ShapeMatching:
		m := &Matching{Pairs: pick(ex.Matching.Pairs, keep)}
		m.Options = shuffledRights(m.Pairs)
		out.Matching = m
	case ShapeTranslation:
		out.Translation = &Translation{Items: pick(ex.Translation.Items, keep)}
	case ShapeMultipleChoice:
		out.MultipleChoice = &MultipleChoice{Items: pick(ex.MultipleChoice.Items, keep)}
	}

	out.EntryIDs = []string{}
	for i := range keep {
		if id := out.ItemEntryID(i); id != "" && !slices.Contains(out.EntryIDs, id) {
			out.EntryIDs = append(out.EntryIDs, id)
		}
	}
	return out, nil
}

func pick[T any](items []T, indices []int) []T {
	out := make([]T, 0, len(indices))
	for _, i := range indices {
		out = append(out, items[i])
	}
	return out
}
