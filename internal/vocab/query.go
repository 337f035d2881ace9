package vocab

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hpungsan/lingo/internal/fuzzy"
)

// Filters narrows a query. Every field is optional; set fields combine with AND.
type Filters struct {
	// Category keeps entries carrying this exact label
	Category *string `json:"category,omitempty"`

	FavoritesOnly  bool `json:"favorites_only,omitempty"`
	HasHistoryOnly bool `json:"has_history_only,omitempty"`

	// SearchTerm is fuzzy-matched against the target word, the native word, and each category.
	// A blank term imposes no constraint.
	SearchTerm *string `json:"search_term,omitempty"`
}

// SortKey selects the ordering of query results.
type SortKey string

const (
	SortDateAdded        SortKey = "date_added"
	SortTargetWord       SortKey = "target_word"
	SortNativeWord       SortKey = "native_word"
	SortLearningProgress SortKey = "learning_progress"
	SortLastLearning     SortKey = "last_learning"
)

// SortKeys lists the supported keys.
var SortKeys = []SortKey{SortDateAdded, SortTargetWord, SortNativeWord, SortLearningProgress, SortLastLearning}

// ParseSortKey validates s.
func ParseSortKey(s string) (SortKey, error) {
	k := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(SortKeys, k) {
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// SortOrder is ascending or descending.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSortOrder validates s.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(strings.TrimSpace(s))); o {
	case Asc, Desc:
		return o, nil
	default:
		return "", fmt.Errorf("unknown sort order %q", s)
	}
}

// Pipeline runs the filter/sort query with a configurable match threshold and collation locale.
// The zero value uses fuzzy.DefaultThreshold and language.Und.
type Pipeline struct {
	// Threshold is the fuzzy similarity needed for a search match; <= 0 means fuzzy.DefaultThreshold
	Threshold float64

	// Locale drives word ordering for target_word and native_word sorts
	Locale language.Tag
}

// NewPipeline builds a Pipeline from a BCP 47 locale string. Unparseable locales fall back to language.Und.
func NewPipeline(threshold float64, locale string) Pipeline {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil {
		tag = language.Und
	}
	return Pipeline{Threshold: threshold, Locale: tag}
}

// Query filters and sorts entries with the default pipeline.
func Query(entries []Entry, filters Filters, key SortKey, order SortOrder) []Entry {
	return Pipeline{}.Query(entries, filters, key, order)
}

// Query returns a new slice holding the entries that pass filters, stably sorted by key.
// Descending order negates the comparator, so equal keys keep input order either way.
// An unrecognized key leaves the filtered entries in input order. entries is never modified.
func (p Pipeline) Query(entries []Entry, filters Filters, key SortKey, order SortOrder) []Entry {
	out := make([]Entry, 0, len(entries))
	for i := range entries {
		if p.keep(&entries[i], filters) {
			out = append(out, entries[i])
		}
	}

	compare := p.comparator(key)
	if compare == nil {
		return out
	}
	if order == Desc {
		asc := compare
		compare = func(a, b Entry) int { return -asc(a, b) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

func (p Pipeline) keep(e *Entry, f Filters) bool {
	if f.Category != nil && !e.HasCategory(*f.Category) {
		return false
	}
	if f.FavoritesOnly && !e.IsFavorite {
		return false
	}
	if f.HasHistoryOnly && len(e.LearningHistory) == 0 {
		return false
	}
	if f.SearchTerm != nil && strings.TrimSpace(*f.SearchTerm) != "" {
		return p.matches(*f.SearchTerm, e)
	}
	return true
}

func (p Pipeline) matches(term string, e *Entry) bool {
	threshold := p.Threshold
	if threshold <= 0 {
		threshold = fuzzy.DefaultThreshold
	}
	if fuzzy.MatchesThreshold(term, e.TargetWord, threshold) ||
		fuzzy.MatchesThreshold(term, e.NativeWord, threshold) {
		return true
	}
	for _, c := range e.Categories {
		if fuzzy.MatchesThreshold(term, c, threshold) {
			return true
		}
	}
	return false
}

// comparator returns the ascending comparator for key, or nil for unknown keys.
func (p Pipeline) comparator(key SortKey) func(a, b Entry) int {
	switch key {
	case SortDateAdded:
		return func(a, b Entry) int { return cmp.Compare(a.DateAdded, b.DateAdded) }
	case SortTargetWord:
		col := collate.New(p.Locale, collate.IgnoreCase)
		return func(a, b Entry) int { return col.CompareString(a.TargetWord, b.TargetWord) }
	case SortNativeWord:
		col := collate.New(p.Locale, collate.IgnoreCase)
		return func(a, b Entry) int { return col.CompareString(a.NativeWord, b.NativeWord) }
	case SortLearningProgress:
		return func(a, b Entry) int { return cmp.Compare(a.SuccessRate(), b.SuccessRate()) }
	case SortLastLearning:
		// Entries without history sort as earliest
		return func(a, b Entry) int {
			da, _ := a.LastLearningDate()
			db, _ := b.LastLearningDate()
			return cmp.Compare(da, db)
		}
	default:
		return nil
	}
}

// AllCategories returns the distinct category labels across entries, lexicographically sorted.
func AllCategories(entries []Entry) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for i := range entries {
		for _, c := range entries[i].Categories {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}

// EntriesByCategory returns the entries carrying category, in input order.
func EntriesByCategory(entries []Entry, category string) []Entry {
	out := make([]Entry, 0)
	for i := range entries {
		if entries[i].HasCategory(category) {
			out = append(out, entries[i])
		}
	}
	return out
}

// CategoryCount is a label with the number of entries carrying it.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CategoryCounts returns per-label entry counts sorted by label.
func CategoryCounts(entries []Entry) []CategoryCount {
	counts := make(map[string]int)
	for i := range entries {
		for _, c := range entries[i].Categories {
			counts[c]++
		}
	}
	out := make([]CategoryCount, 0, len(counts))
	for _, name := range AllCategories(entries) {
		out = append(out, CategoryCount{Name: name, Count: counts[name]})
	}
	return out
}
