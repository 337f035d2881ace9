package exercise

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/hpungsan/lingo/internal/vocab"
)

// shuffle orders the matching options; replaced in tests that need a fixed order.
var shuffle = rand.Shuffle

type rawGapFill struct {
	Items []struct {
		Word     string  `json:"word"`
		Sentence string  `json:"sentence"`
		Answer   string  `json:"answer"`
		Hint     *string `json:"hint"`
	} `json:"items"`
}

type rawMatching struct {
	Pairs []struct {
		Word  string `json:"word"`
		Left  string `json:"left"`
		Right string `json:"right"`
	} `json:"pairs"`
}

type rawTranslation struct {
	Items []struct {
		Word   string `json:"word"`
		Source string `json:"source"`
		Answer string `json:"answer"`
	} `json:"items"`
}

type rawMultipleChoice struct {
	Items []struct {
		Word         string   `json:"word"`
		Question     string   `json:"question"`
		Options      []string `json:"options"`
		CorrectIndex *int     `json:"correct_index"`
		Explanation  *string  `json:"explanation"`
	} `json:"items"`
}

// Parse decodes and validates model output for kind, linking each item to the
// entry whose target word it names. Items that name no known entry keep an
// empty EntryID. The returned exercise has no ID or CreatedAt yet.
// All validation failures wrap ErrInvalidExercise.
func Parse(kind vocab.ExerciseKind, raw []byte, entries []vocab.Entry) (*Exercise, error) {
	shape, ok := ShapeOf(kind)
	if !ok {
		return nil, fmt.Errorf("%w: kind %q has no generated content", ErrInvalidExercise, kind)
	}

	data := trimFence(raw)
	link := newLinker(entries)
	ex := &Exercise{Kind: kind, EntryIDs: entryIDs(entries)}

	var err error
	switch shape {
	case ShapeGapFill:
		ex.GapFill, err = parseGapFill(data, link)
	case ShapeMatching:
		ex.Matching, err = parseMatching(data, link)
	case ShapeTranslation:
		ex.Translation, err = parseTranslation(data, link)
	case ShapeMultipleChoice:
		ex.MultipleChoice, err = parseMultipleChoice(data, link)
	}
	if err != nil {
		return nil, err
	}
	if ex.Len() == 0 {
		return nil, fmt.Errorf("%w: no items", ErrInvalidExercise)
	}
	return ex, nil
}

func parseGapFill(data []byte, link linker) (*GapFill, error) {
	var r rawGapFill
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExercise, err)
	}
	out := &GapFill{Items: make([]GapFillItem, 0, len(r.Items))}
	for i, it := range r.Items {
		sentence := strings.TrimSpace(it.Sentence)
		answer := strings.TrimSpace(it.Answer)
		if !strings.Contains(sentence, GapMarker) {
			return nil, fmt.Errorf("%w: items[%d]: sentence has no %s gap", ErrInvalidExercise, i, GapMarker)
		}
		if answer == "" {
			return nil, fmt.Errorf("%w: items[%d]: answer is empty", ErrInvalidExercise, i)
		}
		out.Items = append(out.Items, GapFillItem{
			EntryID:  link.find(it.Word, answer),
			Sentence: sentence,
			Answer:   answer,
			Hint:     trimmedPtr(it.Hint),
		})
	}
	return out, nil
}

func parseMatching(data []byte, link linker) (*Matching, error) {
	var r rawMatching
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExercise, err)
	}
	out := &Matching{Pairs: make([]MatchingPair, 0, len(r.Pairs))}
	lefts := make(map[string]bool)
	rights := make(map[string]bool)
	for i, p := range r.Pairs {
		left := strings.TrimSpace(p.Left)
		right := strings.TrimSpace(p.Right)
		if left == "" || right == "" {
			return nil, fmt.Errorf("%w: pairs[%d]: left and right are required", ErrInvalidExercise, i)
		}
		if lefts[vocab.Normalize(left)] || rights[vocab.Normalize(right)] {
			return nil, fmt.Errorf("%w: pairs[%d]: duplicate pair %q / %q", ErrInvalidExercise, i, left, right)
		}
		lefts[vocab.Normalize(left)] = true
		rights[vocab.Normalize(right)] = true
		out.Pairs = append(out.Pairs, MatchingPair{
			EntryID: link.find(p.Word, left),
			Left:    left,
			Right:   right,
		})
	}
	out.Options = shuffledRights(out.Pairs)
	return out, nil
}

func parseTranslation(data []byte, link linker) (*Translation, error) {
	var r rawTranslation
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExercise, err)
	}
	out := &Translation{Items: make([]TranslationItem, 0, len(r.Items))}
	for i, it := range r.Items {
		source := strings.TrimSpace(it.Source)
		answer := strings.TrimSpace(it.Answer)
		if source == "" || answer == "" {
			return nil, fmt.Errorf("%w: items[%d]: source and answer are required", ErrInvalidExercise, i)
		}
		out.Items = append(out.Items, TranslationItem{
			EntryID: link.find(it.Word, ""),
			Source:  source,
			Answer:  answer,
		})
	}
	return out, nil
}

func parseMultipleChoice(data []byte, link linker) (*MultipleChoice, error) {
	var r rawMultipleChoice
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExercise, err)
	}
	out := &MultipleChoice{Items: make([]MultipleChoiceItem, 0, len(r.Items))}
	for i, it := range r.Items {
		question := strings.TrimSpace(it.Question)
		if question == "" {
			return nil, fmt.Errorf("%w: items[%d]: question is empty", ErrInvalidExercise, i)
		}
		if len(it.Options) < 2 {
			return nil, fmt.Errorf("%w: items[%d]: need at least 2 options, got %d", ErrInvalidExercise, i, len(it.Options))
		}
		options := make([]string, len(it.Options))
		seen := make(map[string]bool, len(it.Options))
		for j, o := range it.Options {
			o = strings.TrimSpace(o)
			if o == "" {
				return nil, fmt.Errorf("%w: items[%d]: option %d is empty", ErrInvalidExercise, i, j)
			}
			if seen[vocab.Normalize(o)] {
				return nil, fmt.Errorf("%w: items[%d]: duplicate option %q", ErrInvalidExercise, i, o)
			}
			seen[vocab.Normalize(o)] = true
			options[j] = o
		}
		if it.CorrectIndex == nil {
			return nil, fmt.Errorf("%w: items[%d]: correct_index is missing", ErrInvalidExercise, i)
		}
		if *it.CorrectIndex < 0 || *it.CorrectIndex >= len(options) {
			return nil, fmt.Errorf("%w: items[%d]: correct_index %d out of range", ErrInvalidExercise, i, *it.CorrectIndex)
		}
		out.Items = append(out.Items, MultipleChoiceItem{
			EntryID:      link.find(it.Word, ""),
			Question:     question,
			Options:      options,
			CorrectIndex: *it.CorrectIndex,
			Explanation:  trimmedPtr(it.Explanation),
		})
	}
	return out, nil
}

// linker maps normalized target words to entry ids.
type linker map[string]string

func newLinker(entries []vocab.Entry) linker {
	l := make(linker, len(entries))
	for _, e := range entries {
		norm := vocab.Normalize(e.TargetWord)
		if _, exists := l[norm]; !exists {
			l[norm] = e.ID
		}
	}
	return l
}

// find looks up word, then fallback.
func (l linker) find(word, fallback string) string {
	if id, ok := l[vocab.Normalize(word)]; ok && strings.TrimSpace(word) != "" {
		return id
	}
	if id, ok := l[vocab.Normalize(fallback)]; ok && strings.TrimSpace(fallback) != "" {
		return id
	}
	return ""
}

func entryIDs(entries []vocab.Entry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids
}

func shuffledRights(pairs []MatchingPair) []string {
	options := make([]string, len(pairs))
	for i, p := range pairs {
		options[i] = p.Right
	}
	shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	return options
}

// trimFence strips a Markdown code fence some models wrap JSON in.
func trimFence(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return []byte(s)
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
