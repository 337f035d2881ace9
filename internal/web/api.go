package web

import (
	"encoding/json"
	"net/http"

	"github.com/hpungsan/lingo/internal/errors"
	"github.com/hpungsan/lingo/internal/exercise"
	"github.com/hpungsan/lingo/internal/ops"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// decodeBody reads a JSON request body into T. An empty body yields the zero value.
func decodeBody[T any](w http.ResponseWriter, r *http.Request) (T, error) {
	var v T
	if r.Body == nil || r.ContentLength == 0 {
		return v, nil
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, errors.NewInvalidRequest("invalid JSON body: " + err.Error())
	}
	return v, nil
}

// respond writes result as JSON, or the error envelope.
func (h *Handlers) respond(w http.ResponseWriter, status int, result any, err error) {
	if err != nil {
		lErr := asLingoError(err)
		if lErr.Code == errors.ErrInternal {
			h.log.Error("api request failed", "error", err)
		}
		renderJSONError(w, lErr)
		return
	}
	renderJSON(w, status, result)
}

type addBody struct {
	TargetWord     string   `json:"target_word"`
	NativeWord     string   `json:"native_word"`
	Categories     []string `json:"categories"`
	SampleSentence *string  `json:"sample_sentence"`
	Notes          *string  `json:"notes"`
	Source         *string  `json:"source"`
	IsFavorite     bool     `json:"is_favorite"`
	Mode           string   `json:"mode"`
}

type updateBody struct {
	TargetWord     *string   `json:"target_word"`
	NativeWord     *string   `json:"native_word"`
	Categories     *[]string `json:"categories"`
	SampleSentence *string   `json:"sample_sentence"`
	Notes          *string   `json:"notes"`
	IsFavorite     *bool     `json:"is_favorite"`
}

type recordBody struct {
	ExerciseKind     string `json:"exercise_kind"`
	Success          bool   `json:"success"`
	TimeSpentSeconds int    `json:"time_spent_seconds"`
	Date             int64  `json:"date"`
}

type generateBody struct {
	Kind          string   `json:"kind"`
	EntryIDs      []string `json:"entry_ids"`
	Category      *string  `json:"category"`
	FavoritesOnly bool     `json:"favorites_only"`
	Search        *string  `json:"search"`
	Sort          string   `json:"sort"`
	Order         string   `json:"order"`
	Size          int      `json:"size"`
	Count         int      `json:"count"`
	Difficulty    string   `json:"difficulty"`
}

type submitBody struct {
	Answers          []exercise.Answer `json:"answers"`
	TimeSpentSeconds int               `json:"time_spent_seconds"`
	DryRun           bool              `json:"dry_run"`
	Retry            bool              `json:"retry"`
}

// APIList handles GET /api/words.
func (h *Handlers) APIList(w http.ResponseWriter, r *http.Request) {
	result, err := ops.List(r.Context(), h.db, h.cfg, listInput(r))
	h.respond(w, http.StatusOK, result, err)
}

// APIAdd handles POST /api/words.
func (h *Handlers) APIAdd(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody[addBody](w, r)
	if err != nil {
		h.respond(w, 0, nil, err)
		return
	}
	result, err := ops.Add(r.Context(), h.db, ops.AddInput{
		TargetWord:     body.TargetWord,
		NativeWord:     body.NativeWord,
		Categories:     body.Categories,
		SampleSentence: body.SampleSentence,
		Notes:          body.Notes,
		Source:         body.Source,
		IsFavorite:     body.IsFavorite,
		Mode:           ops.AddMode(body.Mode),
	})
	status := http.StatusOK
	if err == nil && result.Created {
		status = http.StatusCreated
	}
	h.respond(w, status, result, err)
}

// APIFetch handles GET /api/words/{id}.
func (h *Handlers) APIFetch(w http.ResponseWriter, r *http.Request) {
	id, err := requirePathID(r)
	if err != nil {
		h.respond(w, 0, nil, err)
		return
	}
	result, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{ID: id})
	h.respond(w, http.StatusOK, result, err)
}

// APIUpdate handles PATCH /api/words/{id}.
func (h *Handlers) APIUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := requirePathID(r)
	if err != nil {
		h.respond(w, 0, nil, err)
		return
	}
	body, err := decodeBody[updateBody](w, r)
	if err != nil {
		h.respond(w, 0, nil, err)
		return
	}
	result, err := ops.Update(r.Context(), h.db, ops.UpdateInput{
		ID:             id,
		TargetWord:     body.TargetWord,
		NativeWord:     body.NativeWord,
		Categories:     body.Categories,
		SampleSentence: body.SampleSentence,
		Notes:          body.Notes,
		IsFavorite:     body.IsFavorite,
	})
	h.respond(w, http.StatusOK, result, err)
}

// APIDelete handles DELETE /api/words/{id}.
func (h *Handlers) APIDelete(w http.ResponseWriter, r *http.Request) {
	id, err := requirePathID(r)
	if err != nil {
		h.respond(w, 0, nil, err)
		return
	}
	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{ID: id})
	h.respond(w, http.StatusOK, result, err)
}

// APIRecord handles POST /api/words/{id}/attempts.
func (h *Handlers) APIRecord(w http.ResponseWriter, r *http.Request) {
	id, err := requirePathID(r)
	if err != nil {
		h.respond(w, 0, nil, err)
		return
	}
	body, err := decodeBody[recordBody](w, r)
	if err != nil {
		h.respond(w, 0, nil, err)
		return
	}
	result, err := ops.Record(r.Context(), h.db, ops.RecordInput{
		ID:               id,
		ExerciseKind:     body.ExerciseKind,
		Success:          body.Success,
		TimeSpentSeconds: body.TimeSpentSeconds,
		Date:             body.Date,
	})
	h.respond(w, http.StatusOK, result, err)
}

// APICategories handles GET /api/categories.
func (h *Handlers) APICategories(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Categories(r.Context(), h.db, ops.CategoriesInput{Name: ptrString(r.URL.Query().Get("name"))})
	h.respond(w, http.StatusOK, result, err)
}

// APIStats handles GET /api/stats.
func (h *Handlers) APIStats(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Stats(r.Context(), h.db)
	h.respond(w, http.StatusOK, result, err)
}

// APIExercises handles GET /api/exercises.
func (h *Handlers) APIExercises(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListExercises(r.Context(), h.db, ops.ListExercisesInput{Limit: parseIntParam(r, "limit", 0)})
	h.respond(w, http.StatusOK, result, err)
}

// APIGenerate handles POST /api/exercises.
func (h *Handlers) APIGenerate(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody[generateBody](w, r)
	if err != nil {
		h.respond(w, 0, nil, err)
		return
	}
	result, err := ops.Generate(r.Context(), h.db, h.cfg, h.llm, ops.GenerateInput{
		Kind:          body.Kind,
		EntryIDs:      body.EntryIDs,
		Category:      body.Category,
		FavoritesOnly: body.FavoritesOnly,
		Search:        body.Search,
		Sort:          body.Sort,
		Order:         body.Order,
		Size:          body.Size,
		Count:         body.Count,
		Difficulty:    body.Difficulty,
	})
	if err != nil {
		h.log.Warn("exercise generation failed", "kind", body.Kind, "error", err)
	}
	h.respond(w, http.StatusCreated, result, err)
}

// APIExercise handles GET /api/exercises/{id}.
func (h *Handlers) APIExercise(w http.ResponseWriter, r *http.Request) {
	id, err := requirePathID(r)
	if err != nil {
		h.respond(w, 0, nil, err)
		return
	}
	result, err := ops.GetExercise(r.Context(), h.db, ops.GetExerciseInput{ID: id})
	h.respond(w, http.StatusOK, result, err)
}

// APISubmit handles POST /api/exercises/{id}/submit.
func (h *Handlers) APISubmit(w http.ResponseWriter, r *http.Request) {
	id, err := requirePathID(r)
	if err != nil {
		h.respond(w, 0, nil, err)
		return
	}
	body, err := decodeBody[submitBody](w, r)
	if err != nil {
		h.respond(w, 0, nil, err)
		return
	}
	result, err := ops.Submit(r.Context(), h.db, h.cfg, ops.SubmitInput{
		ExerciseID:       id,
		Answers:          body.Answers,
		TimeSpentSeconds: body.TimeSpentSeconds,
		DryRun:           body.DryRun,
		Retry:            body.Retry,
	})
	h.respond(w, http.StatusOK, result, err)
}

// APIRetry handles POST /api/exercises/{id}/retry.
func (h *Handlers) APIRetry(w http.ResponseWriter, r *http.Request) {
	id, err := requirePathID(r)
	if err != nil {
		h.respond(w, 0, nil, err)
		return
	}
	body, err := decodeBody[submitBody](w, r)
	if err != nil {
		h.respond(w, 0, nil, err)
		return
	}
	result, err := ops.RetryMistakes(r.Context(), h.db, h.cfg, ops.RetryInput{ExerciseID: id, Answers: body.Answers})
	h.respond(w, http.StatusCreated, result, err)
}
