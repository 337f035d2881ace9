// Package fuzzy decides whether a free-text query is relevant to a word, a
// translation, or a category label. It combines substring/prefix checks with a
// normalized Levenshtein similarity so small typos still match.
package fuzzy

import "strings"

// DefaultThreshold is the minimum similarity for a typo-tolerant match.
// Changing it shifts search recall noticeably; keep it at 0.4 unless configured.
const DefaultThreshold = 0.4

// Matches reports whether query matches candidate at DefaultThreshold.
func Matches(query, candidate string) bool {
	return MatchesThreshold(query, candidate, DefaultThreshold)
}

// MatchesThreshold reports whether query matches candidate.
//
// Both strings are trimmed and lowercased. A match is, in order: the query
// contained in (or a prefix of) the candidate; the query contained in, a prefix
// of, or similar enough to any whitespace-separated token of the candidate; or
// the whole candidate being similar enough. Similarity ties at the threshold match.
//
// An empty query matches every candidate. A non-empty query never matches an
// empty candidate for thresholds above zero.
func MatchesThreshold(query, candidate string, threshold float64) bool {
	q := normalize(query)
	c := normalize(candidate)

	if strings.Contains(c, q) || strings.HasPrefix(c, q) {
		return true
	}

	for _, token := range strings.Fields(c) {
		if strings.Contains(token, q) || strings.HasPrefix(token, q) {
			return true
		}
		if Similarity(q, token) >= threshold {
			return true
		}
	}

	return Similarity(q, c) >= threshold
}

// Similarity returns (maxLen - Distance(a, b)) / maxLen, with lengths counted in
// runes. Two empty strings are fully similar (1.0). The result is in [0, 1].
func Similarity(a, b string) float64 {
	la := len([]rune(a))
	lb := len([]rune(b))
	maxLen := max(la, lb)
	if maxLen == 0 {
		return 1.0
	}
	return float64(maxLen-Distance(a, b)) / float64(maxLen)
}

// Distance returns the Levenshtein edit distance between a and b, counting
// insertions, deletions, and substitutions of runes at cost 1.
func Distance(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	// Two rows are enough: each cell depends only on the previous row.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
