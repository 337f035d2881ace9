package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// stringItem is the item schema for string arrays.
var stringItem = map[string]any{"type": "string"}

// answerItems is the schema of one exercise answer.
var answerItems = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"text":   map[string]any{"type": "string", "description": "Typed answer (gap_fill, translation)"},
		"choice": map[string]any{"type": "integer", "description": "Option index (matching, multiple choice kinds)"},
	},
}

const (
	kindDescription = "Exercise kind: gap_fill, matching, translation, multiple_choice, " +
		"word_formation, synonym_antonym, word_definition"
	sortDescription  = "Sort key: date_added, target_word, native_word, learning_progress, last_learning"
	orderDescription = "Sort order: asc or desc"
)

var addToolDef = mcp.NewTool("vocab_add",
	mcp.WithDescription("Add a word pair to the vocabulary. Pairs are unique by their normalized target and native words."),
	mcp.WithString("target_word", mcp.Required(), mcp.Description("Word in the language being learned")),
	mcp.WithString("native_word", mcp.Required(), mcp.Description("Translation in the learner's language")),
	mcp.WithArray("categories", mcp.Items(stringItem), mcp.Description("Free-text labels")),
	mcp.WithString("sample_sentence", mcp.Description("Example sentence using the word")),
	mcp.WithString("notes", mcp.Description("Free-form notes")),
	mcp.WithString("source", mcp.Description("Where the word came from (default: manual)")),
	mcp.WithBoolean("is_favorite", mcp.Description("Mark as favorite")),
	mcp.WithString("mode", mcp.Enum("error", "replace"), mcp.Description("On duplicate pair: error (default) or replace")),
)

var fetchToolDef = mcp.NewTool("vocab_fetch",
	mcp.WithDescription("Fetch one entry with its full learning history."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Entry ID")),
)

var updateToolDef = mcp.NewTool("vocab_update",
	mcp.WithDescription("Edit an entry. Omitted fields are unchanged; an empty sample_sentence or notes clears it."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Entry ID")),
	mcp.WithString("target_word", mcp.Description("New target word")),
	mcp.WithString("native_word", mcp.Description("New native word")),
	mcp.WithArray("categories", mcp.Items(stringItem), mcp.Description("Replacement category list")),
	mcp.WithString("sample_sentence", mcp.Description("New sample sentence")),
	mcp.WithString("notes", mcp.Description("New notes")),
	mcp.WithBoolean("is_favorite", mcp.Description("Favorite flag")),
)

var deleteToolDef = mcp.NewTool("vocab_delete",
	mcp.WithDescription("Delete an entry and its learning history."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Entry ID")),
)

var favoriteToolDef = mcp.NewTool("vocab_favorite",
	mcp.WithDescription("Set or toggle an entry's favorite flag."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Entry ID")),
	mcp.WithBoolean("favorite", mcp.Description("New value; omit to toggle")),
)

var recordToolDef = mcp.NewTool("vocab_record",
	mcp.WithDescription("Append one practice attempt to an entry's learning history."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Entry ID")),
	mcp.WithString("exercise_kind", mcp.Required(), mcp.Description("Kind of exercise practiced, including flashcard")),
	mcp.WithBoolean("success", mcp.Description("Whether the attempt succeeded")),
	mcp.WithNumber("time_spent_seconds", mcp.Description("Seconds spent")),
	mcp.WithNumber("date", mcp.Description("Unix timestamp (default: now)")),
)

var listToolDef = mcp.NewTool("vocab_list",
	mcp.WithDescription("List entries with filters, fuzzy search, sorting and pagination."),
	mcp.WithString("category", mcp.Description("Only entries with this exact category")),
	mcp.WithBoolean("favorites_only", mcp.Description("Only favorites")),
	mcp.WithBoolean("has_history_only", mcp.Description("Only entries practiced at least once")),
	mcp.WithString("search", mcp.Description("Typo-tolerant search over words and categories")),
	mcp.WithString("sort", mcp.Description(sortDescription)),
	mcp.WithString("order", mcp.Description(orderDescription)),
	mcp.WithNumber("limit", mcp.Description("Page size (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip")),
)

var categoriesToolDef = mcp.NewTool("vocab_categories",
	mcp.WithDescription("List categories with entry counts; with name, also list that category's entries."),
	mcp.WithString("name", mcp.Description("Category to expand")),
)

var statsToolDef = mcp.NewTool("vocab_stats",
	mcp.WithDescription("Vocabulary and practice totals."),
)

var exportToolDef = mcp.NewTool("vocab_export",
	mcp.WithDescription("Export entries with history to a JSONL file."),
	mcp.WithString("path", mcp.Description("Output .jsonl path (default: ~/.lingo/exports/<category|all>-<timestamp>.jsonl)")),
	mcp.WithString("category", mcp.Description("Only entries with this category")),
	mcp.WithBoolean("favorites_only", mcp.Description("Only favorites")),
)

var importToolDef = mcp.NewTool("vocab_import",
	mcp.WithDescription("Import entries from a JSONL export."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path to a .jsonl export")),
	mcp.WithString("mode", mcp.Enum("error", "replace", "skip"), mcp.Description("Collision handling (default: error, atomic)")),
)

var importSheetToolDef = mcp.NewTool("vocab_import_sheet",
	mcp.WithDescription("Import word pairs from an .xlsx or .csv spreadsheet."),
	mcp.WithString("path", mcp.Required(), mcp.Description("Path to a .xlsx or .csv file")),
	mcp.WithObject("columns",
		mcp.Description("Column letters (default: target A, native B, categories C, sentence D, notes E)"),
		mcp.Properties(map[string]any{
			"target":     map[string]any{"type": "string"},
			"native":     map[string]any{"type": "string"},
			"categories": map[string]any{"type": "string"},
			"sentence":   map[string]any{"type": "string"},
			"notes":      map[string]any{"type": "string"},
		}),
	),
	mcp.WithString("sheet_name", mcp.Description("Worksheet to read (default: first)")),
	mcp.WithNumber("start_row", mcp.Description("First data row, 1-based (default: 2)")),
	mcp.WithString("category_separator", mcp.Description("Separator in the categories cell (default: ;)")),
	mcp.WithBoolean("section_rows", mcp.Description("Rows with only a target word start a category section")),
	mcp.WithArray("categories", mcp.Items(stringItem), mcp.Description("Categories added to every row")),
	mcp.WithString("mode", mcp.Enum("error", "replace", "skip"), mcp.Description("Existing pairs (default: skip)")),
)

var exportSheetToolDef = mcp.NewTool("vocab_export_sheet",
	mcp.WithDescription("Export entries to an .xlsx or .csv spreadsheet in the import layout."),
	mcp.WithString("path", mcp.Description("Output path (default: ~/.lingo/exports/<category|all>-<timestamp>.xlsx)")),
	mcp.WithString("category", mcp.Description("Only entries with this category")),
	mcp.WithBoolean("favorites_only", mcp.Description("Only favorites")),
)

var generateToolDef = mcp.NewTool("exercise_generate",
	mcp.WithDescription("Generate an exercise from vocabulary entries with the language model and store it."),
	mcp.WithString("kind", mcp.Required(), mcp.Description(kindDescription)),
	mcp.WithArray("entry_ids", mcp.Items(stringItem), mcp.Description("Entries to use; filters are ignored when set")),
	mcp.WithString("category", mcp.Description("Select entries with this category")),
	mcp.WithBoolean("favorites_only", mcp.Description("Select favorites only")),
	mcp.WithString("search", mcp.Description("Select entries matching this search")),
	mcp.WithString("sort", mcp.Description(sortDescription+" (default: learning_progress)")),
	mcp.WithString("order", mcp.Description(orderDescription+" (default: asc)")),
	mcp.WithNumber("size", mcp.Description("Entries to draw (default from config, max 30)")),
	mcp.WithNumber("count", mcp.Description("Items to request (default: one per entry)")),
	mcp.WithString("difficulty", mcp.Description("Free-text difficulty hint, e.g. beginner")),
)

var submitToolDef = mcp.NewTool("exercise_submit",
	mcp.WithDescription("Grade answers for a stored exercise and record one attempt per linked entry."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise ID")),
	mcp.WithArray("answers", mcp.Items(answerItems), mcp.Description("One answer per item, in order")),
	mcp.WithNumber("time_spent_seconds", mcp.Description("Session length, split across items")),
	mcp.WithBoolean("dry_run", mcp.Description("Grade without recording")),
	mcp.WithBoolean("retry", mcp.Description("Also create a retry exercise from the mistakes")),
)

var retryToolDef = mcp.NewTool("exercise_retry",
	mcp.WithDescription("Create a new exercise from the items answered wrong. Nothing is recorded."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Exercise ID")),
	mcp.WithArray("answers", mcp.Items(answerItems), mcp.Description("One answer per item, in order")),
)

var exerciseFetchToolDef = mcp.NewTool("exercise_fetch",
	mcp.WithDescription("Fetch a stored exercise."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Exercise ID")),
)

var exerciseListToolDef = mcp.NewTool("exercise_list",
	mcp.WithDescription("List recent exercises, newest first."),
	mcp.WithNumber("limit", mcp.Description("Max exercises (default 20, max 100)")),
)
