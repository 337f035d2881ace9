package web

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/lingo/internal/errors"
	"github.com/hpungsan/lingo/internal/exercise"
	"github.com/hpungsan/lingo/internal/logger"
	"github.com/hpungsan/lingo/internal/ops"
	"github.com/hpungsan/lingo/internal/vocab"
)

// PageData contains common fields used across all page templates.
type PageData struct {
	Title   string
	Version string
	Nav     string // active nav item: "words", "categories", "exercises", "stats"
}

// ListPageData is the template data for the word list page.
type ListPageData struct {
	PageData
	Items          []vocab.Summary
	Pagination     ops.Pagination
	Categories     []string
	SortKeys       []vocab.SortKey
	Category       string
	Query          string
	Sort           string
	Order          string
	FavoritesOnly  bool
	HasHistoryOnly bool
}

// PageURL returns the list URL for another page with the current filters.
func (d ListPageData) PageURL(offset int) string {
	q := url.Values{}
	if d.Category != "" {
		q.Set("category", d.Category)
	}
	if d.Query != "" {
		q.Set("q", d.Query)
	}
	if d.Sort != "" {
		q.Set("sort", d.Sort)
	}
	if d.Order != "" {
		q.Set("order", d.Order)
	}
	if d.FavoritesOnly {
		q.Set("favorites", "true")
	}
	if d.HasHistoryOnly {
		q.Set("history", "true")
	}
	q.Set("limit", strconv.Itoa(d.Pagination.Limit))
	q.Set("offset", strconv.Itoa(max(offset, 0)))
	return "/words?" + q.Encode()
}

// DetailPageData is the template data for the word detail page.
type DetailPageData struct {
	PageData
	Entry    *ops.FetchOutput
	Sentence template.HTML
	Notes    template.HTML
}

// CategoriesPageData is the template data for the categories page.
type CategoriesPageData struct {
	PageData
	Categories []vocab.CategoryCount
	Selected   string
	Entries    []vocab.Summary
}

// KindCount is one row of the attempts-by-kind table.
type KindCount struct {
	Kind  string
	Count int
}

// StatsPageData is the template data for the stats page.
type StatsPageData struct {
	PageData
	Stats *ops.StatsOutput
	Kinds []KindCount
}

// ExercisesPageData is the template data for the exercise list page.
type ExercisesPageData struct {
	PageData
	Items []ops.ExerciseSummary
}

// ExercisePageData is the template data for one exercise.
type ExercisePageData struct {
	PageData
	Exercise *exercise.Exercise
}

// ErrorPageData is the template data for the error page.
type ErrorPageData struct {
	PageData
	StatusCode int
	Message    string
}

// Renderer manages template parsing and rendering.
type Renderer struct {
	templates map[string]*template.Template
	version   string
	log       *logger.Logger
}

// NewRenderer creates a Renderer by parsing templates from the given FS.
func NewRenderer(templateFS fs.FS, version string, log *logger.Logger) *Renderer {
	funcMap := template.FuncMap{
		"add":        func(a, b int) int { return a + b },
		"sub":        func(a, b int) int { return a - b },
		"formatTime": formatTime,
		"formatDate": formatDate,
		"percent":    percent,
		"markdown":   renderMarkdown,
		"join":       strings.Join,
		"deref":      deref,
		"hasValue":   hasValue,
	}

	// Parse layout as the base template
	layoutTmpl := template.Must(template.New("layout").Funcs(funcMap).ParseFS(templateFS, "layout.html"))

	pages := map[string]string{
		"list":       "list.html",
		"detail":     "detail.html",
		"categories": "categories.html",
		"stats":      "stats.html",
		"exercises":  "exercises.html",
		"exercise":   "exercise.html",
		"error":      "error.html",
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, file := range pages {
		t := template.Must(layoutTmpl.Clone())
		template.Must(t.ParseFS(templateFS, file))
		templates[name] = t
	}

	return &Renderer{
		templates: templates,
		version:   version,
		log:       log,
	}
}

// page builds the common page fields.
func (r *Renderer) page(title, nav string) PageData {
	return PageData{Title: title, Version: r.version, Nav: nav}
}

// renderPage renders a named page template with the given data and HTTP 200 status.
func (r *Renderer) renderPage(w http.ResponseWriter, req *http.Request, name string, data any) {
	r.renderPageStatus(w, req, http.StatusOK, name, data)
}

// renderPageStatus renders a named page template with the given data and HTTP status code.
// For HTMX requests, only the "content" block is rendered to avoid duplicating the layout.
func (r *Renderer) renderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data any) {
	block := "layout"
	if req != nil && req.Header.Get("HX-Request") == "true" {
		block = "content"
	}
	r.renderBlock(w, status, name, block, data)
}

// renderBlock renders a specific named block from a page template.
// Used for htmx partial swaps that target a sub-section of the page.
func (r *Renderer) renderBlock(w http.ResponseWriter, status int, page, block string, data any) {
	t, ok := r.templates[page]
	if !ok {
		r.log.Error("template not found", "template", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, block, data); err != nil {
		r.log.Error("template execution failed", "template", page, "block", block, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// asLingoError unwraps err, treating anything else as internal.
func asLingoError(err error) *errors.LingoError {
	var lErr *errors.LingoError
	if !stderrors.As(err, &lErr) {
		lErr = errors.NewInternal(err)
	}
	return lErr
}

// renderError renders an error response with content negotiation.
func (r *Renderer) renderError(w http.ResponseWriter, req *http.Request, err error) {
	lErr := asLingoError(err)
	if lErr.Code == errors.ErrInternal {
		r.log.Error("request failed", "path", req.URL.Path, "error", err)
	}

	status := lErr.Status
	message := lErr.Message

	// HTMX request: return HTML fragment
	if req.Header.Get("HX-Request") == "true" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		fmt.Fprintf(w, `<div class="error-message">%s</div>`, template.HTMLEscapeString(message))
		return
	}

	// JSON request
	if wantsJSON(req) {
		renderJSONError(w, lErr)
		return
	}

	// Full error page
	r.renderPageStatus(w, req, status, "error", ErrorPageData{
		PageData:   r.page(fmt.Sprintf("Error %d", status), ""),
		StatusCode: status,
		Message:    message,
	})
}

// wantsJSON reports whether the client asked for JSON.
func wantsJSON(req *http.Request) bool {
	return strings.Contains(req.Header.Get("Accept"), "application/json")
}

// renderJSON writes a JSON response.
func renderJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// renderJSONError writes the error envelope shared with the MCP tools.
// Internal errors never carry details.
func renderJSONError(w http.ResponseWriter, lErr *errors.LingoError) {
	errorObj := map[string]any{
		"code":    string(lErr.Code),
		"message": lErr.Message,
		"status":  lErr.Status,
	}
	if lErr.Code != errors.ErrInternal && lErr.Details != nil {
		errorObj["details"] = lErr.Details
	}
	renderJSON(w, lErr.Status, map[string]any{"error": errorObj})
}

// renderMarkdown converts markdown text to HTML using goldmark.
// goldmark drops raw HTML by default, so user text cannot inject markup.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// renderOptionalMarkdown renders s, or nothing for nil.
func renderOptionalMarkdown(s *string) template.HTML {
	if s == nil {
		return ""
	}
	return renderMarkdown(*s)
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}

// formatDate formats a Unix timestamp as "2006-01-02" UTC.
func formatDate(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02")
}

// percent formats a rate in [0, 1] as a whole percentage.
func percent(rate float64) string {
	return fmt.Sprintf("%.0f%%", rate*100)
}

// deref dereferences a pointer, returning the zero value if nil.
// Supports *string and *int64 (the pointer types used in templates).
func deref(v any) any {
	if v == nil {
		return ""
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Zero(rv.Type().Elem()).Interface()
		}
		return rv.Elem().Interface()
	}
	return v
}

// hasValue checks if a pointer value is non-nil.
func hasValue(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return !rv.IsNil()
	}
	return true
}
