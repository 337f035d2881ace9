package web

import (
	"database/sql"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/hpungsan/lingo/internal/config"
	"github.com/hpungsan/lingo/internal/errors"
	"github.com/hpungsan/lingo/internal/llm"
	"github.com/hpungsan/lingo/internal/logger"
	"github.com/hpungsan/lingo/internal/ops"
	"github.com/hpungsan/lingo/internal/vocab"
)

// Handlers contains HTTP route handlers for the web UI and JSON API.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	llm      llm.Client
	log      *logger.Logger
	renderer *Renderer
}

// listInput reads the word list filters shared by the page and the API.
func listInput(r *http.Request) ops.ListInput {
	q := r.URL.Query()
	return ops.ListInput{
		Category:       ptrString(q.Get("category")),
		FavoritesOnly:  parseBoolParam(r, "favorites"),
		HasHistoryOnly: parseBoolParam(r, "history"),
		Search:         ptrString(q.Get("q")),
		Sort:           q.Get("sort"),
		Order:          q.Get("order"),
		Limit:          parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset:         parseIntParam(r, "offset", 0),
	}
}

// HandleList handles GET /words: the filtered, sorted word list.
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	input := listInput(r)

	result, err := ops.List(r.Context(), h.db, h.cfg, input)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	cats, err := ops.Categories(r.Context(), h.db, ops.CategoriesInput{})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	names := make([]string, 0, len(cats.Categories))
	for _, c := range cats.Categories {
		names = append(names, c.Name)
	}

	q := r.URL.Query()
	data := ListPageData{
		PageData:       h.renderer.page("Words", "words"),
		Items:          result.Items,
		Pagination:     result.Pagination,
		Categories:     names,
		SortKeys:       vocab.SortKeys,
		Category:       q.Get("category"),
		Query:          q.Get("q"),
		Sort:           q.Get("sort"),
		Order:          q.Get("order"),
		FavoritesOnly:  input.FavoritesOnly,
		HasHistoryOnly: input.HasHistoryOnly,
	}

	// If htmx targets #results (live search box), render only the results fragment
	if r.Header.Get("HX-Target") == "results" {
		h.renderer.renderBlock(w, http.StatusOK, "list", "word-results", data)
		return
	}
	h.renderer.renderPage(w, r, "list", data)
}

// HandleDetail handles GET /words/{id}: one word with its history.
func (h *Handlers) HandleDetail(w http.ResponseWriter, r *http.Request) {
	entry, err := ops.Fetch(r.Context(), h.db, ops.FetchInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "detail", DetailPageData{
		PageData: h.renderer.page(entry.TargetWord, "words"),
		Entry:    entry,
		Sentence: renderOptionalMarkdown(entry.SampleSentence),
		Notes:    renderOptionalMarkdown(entry.Notes),
	})
}

// HandleFavorite handles POST /words/{id}/favorite: toggles the flag.
func (h *Handlers) HandleFavorite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	result, err := ops.Favorite(r.Context(), h.db, ops.FavoriteInput{ID: id})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: swap the star button
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(favoriteButton(result.ID, result.IsFavorite)))
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/words/"+id, http.StatusFound)
}

// favoriteButton renders the htmx toggle for an entry. ids are ULIDs, so no escaping is needed.
func favoriteButton(id string, favorite bool) string {
	label, class := "☆", "favorite"
	if favorite {
		label, class = "★", "favorite on"
	}
	return `<button class="` + class + `" hx-post="/words/` + id + `/favorite" hx-swap="outerHTML">` + label + `</button>`
}

// HandleDelete handles DELETE /words/{id}.
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	result, err := ops.Delete(r.Context(), h.db, ops.DeleteInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// HTMX request: redirect via HX-Redirect header
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/words")
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/words", http.StatusFound)
}

// HandleCategories handles GET /categories, optionally expanding ?name=.
func (h *Handlers) HandleCategories(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	result, err := ops.Categories(r.Context(), h.db, ops.CategoriesInput{Name: ptrString(name)})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "categories", CategoriesPageData{
		PageData:   h.renderer.page("Categories", "categories"),
		Categories: result.Categories,
		Selected:   name,
		Entries:    result.Entries,
	})
}

// HandleStats handles GET /stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := ops.Stats(r.Context(), h.db)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	kinds := make([]KindCount, 0, len(stats.AttemptsByKind))
	for k, n := range stats.AttemptsByKind {
		kinds = append(kinds, KindCount{Kind: k, Count: n})
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i].Kind < kinds[j].Kind })

	h.renderer.renderPage(w, r, "stats", StatsPageData{
		PageData: h.renderer.page("Stats", "stats"),
		Stats:    stats,
		Kinds:    kinds,
	})
}

// HandleExercises handles GET /exercises.
func (h *Handlers) HandleExercises(w http.ResponseWriter, r *http.Request) {
	result, err := ops.ListExercises(r.Context(), h.db, ops.ListExercisesInput{Limit: parseIntParam(r, "limit", 0)})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "exercises", ExercisesPageData{
		PageData: h.renderer.page("Exercises", "exercises"),
		Items:    result.Items,
	})
}

// HandleExercise handles GET /exercises/{id}.
func (h *Handlers) HandleExercise(w http.ResponseWriter, r *http.Request) {
	ex, err := ops.GetExercise(r.Context(), h.db, ops.GetExerciseInput{ID: r.PathValue("id")})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "exercise", ExercisePageData{
		PageData: h.renderer.page(strings.ReplaceAll(string(ex.Kind), "_", " "), "exercises"),
		Exercise: ex,
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1" || s == "on"
}

// ptrString returns a pointer to s if non-empty, nil otherwise.
func ptrString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// requirePathID rejects blank ids before they reach an op.
func requirePathID(r *http.Request) (string, error) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		return "", errors.NewInvalidRequest("id is required")
	}
	return id, nil
}
