package exercise

import (
	"fmt"
	"strings"

	"github.com/hpungsan/lingo/internal/vocab"
)

// Prompt is the system and user text sent to the language model.
type Prompt struct {
	System string `json:"system"`
	User   string `json:"user"`
}

// PromptOptions tunes generation.
type PromptOptions struct {
	// Count is the number of items to request; 0 means one per entry
	Count int

	TargetLanguage string
	NativeLanguage string

	// Difficulty is free text such as "beginner" or "B2"; empty leaves it to the model
	Difficulty string
}

const systemPrompt = "You are a language tutor who writes practice exercises for a learner of %s whose native language is %s. " +
	"Reply with a single JSON object and nothing else. Follow the schema exactly. " +
	"Every item must refer to one of the listed words through its \"word\" field, copied verbatim."

// schemas describe the JSON each shape must return.
var schemas = map[Shape]string{
	ShapeGapFill: `{"items":[{"word":"<target word>","sentence":"<sentence in %[1]s with ___ where the answer goes>","answer":"<text that fills the gap>","hint":"<optional short hint in %[2]s>"}]}`,
	ShapeMatching: `{"pairs":[{"word":"<target word>","left":"<target word>","right":"<its %[2]s translation>"}]}`,
	ShapeTranslation: `{"items":[{"word":"<target word>","source":"<short sentence in %[2]s using the word's meaning>","answer":"<its translation in %[1]s>"}]}`,
	ShapeMultipleChoice: `{"items":[{"word":"<target word>","question":"<question in %[2]s, or in %[1]s when it is a definition>","options":["<option>","<option>","<option>","<option>"],"correct_index":<0-based index of the right option>,"explanation":"<optional one sentence>"}]}`,
}

// instructions are kind-specific task descriptions.
var instructions = map[vocab.ExerciseKind]string{
	vocab.KindGapFill:        "Write one natural sentence per word with the word replaced by ___. The answer is the word in the form the sentence needs.",
	vocab.KindWordFormation:  "Write one sentence per word where ___ must be filled with a derived form (noun, adjective, adverb, plural or conjugation) of the word. Put the base word in the hint.",
	vocab.KindMatching:       "Produce one pair per word: the target word on the left and its translation on the right. Rights must be distinct.",
	vocab.KindTranslation:    "Write one short sentence per word in the learner's native language that a correct translation would express with the word.",
	vocab.KindMultipleChoice: "Ask for the meaning of each word. Give four options with exactly one correct.",
	vocab.KindSynonymAntonym: "For each word ask for a synonym or an antonym (say which in the question). Give four options with exactly one correct.",
	vocab.KindWordDefinition: "For each word write a definition in the target language and ask which word it defines. Give four options with exactly one correct, using the other listed words as distractors where possible.",
}

// BuildPrompt assembles the generation prompt for kind over entries.
func BuildPrompt(kind vocab.ExerciseKind, entries []vocab.Entry, opts PromptOptions) (Prompt, error) {
	shape, ok := ShapeOf(kind)
	if !ok {
		return Prompt{}, fmt.Errorf("cannot generate %q exercises", kind)
	}
	if len(entries) == 0 {
		return Prompt{}, fmt.Errorf("no entries to build an exercise from")
	}

	target := orDefault(opts.TargetLanguage, "the target language")
	native := orDefault(opts.NativeLanguage, "English")
	count := opts.Count
	if count <= 0 || count > len(entries) {
		count = len(entries)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Exercise type: %s\n", kind)
	fmt.Fprintf(&b, "%s\n", instructions[kind])
	fmt.Fprintf(&b, "Create exactly %d items", count)
	if d := strings.TrimSpace(opts.Difficulty); d != "" {
		fmt.Fprintf(&b, " at %s level", d)
	}
	b.WriteString(".\n\nWords (target = native):\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s = %s", e.TargetWord, e.NativeWord)
		if e.SampleSentence != nil && strings.TrimSpace(*e.SampleSentence) != "" {
			fmt.Fprintf(&b, " (example: %s)", strings.TrimSpace(*e.SampleSentence))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nJSON schema:\n")
	fmt.Fprintf(&b, schemas[shape], target, native)

	return Prompt{
		System: fmt.Sprintf(systemPrompt, target, native),
		User:   b.String(),
	}, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return strings.TrimSpace(s)
}
