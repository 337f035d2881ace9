package vocab

// Summary is an entry without its full history, used by list views.
type Summary struct {
	ID             string   `json:"id"`
	TargetWord     string   `json:"target_word"`
	NativeWord     string   `json:"native_word"`
	Categories     []string `json:"categories"`
	SampleSentence *string  `json:"sample_sentence,omitempty"`
	DateAdded      int64    `json:"date_added"`
	IsFavorite     bool     `json:"is_favorite"`

	// Attempts is the history length
	Attempts int `json:"attempts"`

	// SuccessRate is in [0, 1]
	SuccessRate float64 `json:"success_rate"`

	// LastLearning is the latest attempt date, absent without history
	LastLearning *int64 `json:"last_learning,omitempty"`
}

// ToSummary converts an Entry to a Summary.
func (e *Entry) ToSummary() Summary {
	s := Summary{
		ID:             e.ID,
		TargetWord:     e.TargetWord,
		NativeWord:     e.NativeWord,
		Categories:     e.Categories,
		SampleSentence: e.SampleSentence,
		DateAdded:      e.DateAdded,
		IsFavorite:     e.IsFavorite,
		Attempts:       len(e.LearningHistory),
		SuccessRate:    e.SuccessRate(),
	}
	if last, ok := e.LastLearningDate(); ok {
		s.LastLearning = &last
	}
	if s.Categories == nil {
		s.Categories = []string{}
	}
	return s
}
