package vocab

// ExportSchemaVersion is written to the header line of JSONL exports.
const ExportSchemaVersion = "1.0"

// ExportRecord represents an entry record in JSONL export format.
// It is used for parsing export files during import.
type ExportRecord struct {
	// Header detection field - true only for header line
	LingoExport bool `json:"_lingo_export,omitempty"`

	// Header fields (only present in header line)
	SchemaVersion string `json:"schema_version,omitempty"`
	ExportedAt    int64  `json:"exported_at,omitempty"`

	// Entry fields
	ID              string    `json:"id"`
	TargetWord      string    `json:"target_word"`
	NativeWord      string    `json:"native_word"`
	Categories      []string  `json:"categories"`
	SampleSentence  *string   `json:"sample_sentence"`
	Notes           *string   `json:"notes"`
	Source          *string   `json:"source"`
	DateAdded       int64     `json:"date_added"`
	UpdatedAt       int64     `json:"updated_at"`
	IsFavorite      bool      `json:"is_favorite"`
	LearningHistory []Attempt `json:"learning_history"`
}

// ToEntry converts an ExportRecord to an Entry, cleaning categories.
func (r *ExportRecord) ToEntry() *Entry {
	return &Entry{
		ID:              r.ID,
		TargetWord:      r.TargetWord,
		NativeWord:      r.NativeWord,
		Categories:      CleanCategories(r.Categories),
		SampleSentence:  r.SampleSentence,
		Notes:           r.Notes,
		Source:          r.Source,
		DateAdded:       r.DateAdded,
		UpdatedAt:       r.UpdatedAt,
		IsFavorite:      r.IsFavorite,
		LearningHistory: r.LearningHistory,
	}
}

// EntryToExportRecord converts an Entry to an ExportRecord for export.
func EntryToExportRecord(e *Entry) *ExportRecord {
	history := e.LearningHistory
	if history == nil {
		history = []Attempt{}
	}
	categories := e.Categories
	if categories == nil {
		categories = []string{}
	}
	return &ExportRecord{
		ID:              e.ID,
		TargetWord:      e.TargetWord,
		NativeWord:      e.NativeWord,
		Categories:      categories,
		SampleSentence:  e.SampleSentence,
		Notes:           e.Notes,
		Source:          e.Source,
		DateAdded:       e.DateAdded,
		UpdatedAt:       e.UpdatedAt,
		IsFavorite:      e.IsFavorite,
		LearningHistory: history,
	}
}
