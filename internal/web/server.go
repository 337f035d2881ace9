package web

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hpungsan/lingo/internal/config"
	"github.com/hpungsan/lingo/internal/llm"
	"github.com/hpungsan/lingo/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// NewServer creates and configures the HTTP server for the web UI and JSON API.
// client may be nil; exercise generation then answers 503.
func NewServer(db *sql.DB, cfg *config.Config, client llm.Client, log *logger.Logger, version, bind string, port int) (*http.Server, error) {
	// Create sub-FS for templates (strip "templates/" prefix)
	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to create template sub-FS: %w", err)
	}

	// Create sub-FS for static files (strip "static/" prefix)
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to create static sub-FS: %w", err)
	}

	h := &Handlers{
		db:       db,
		cfg:      cfg,
		llm:      client,
		log:      log,
		renderer: NewRenderer(templateSub, version, log),
	}

	mux := http.NewServeMux()
	h.routes(mux)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticSub)))

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%d", bind, port),
		Handler:           requestLog(log, securityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}, nil
}

// routes registers pages and API endpoints using Go 1.22+ pattern syntax.
func (h *Handlers) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/words", http.StatusFound)
	})

	// Pages
	mux.HandleFunc("GET /words", h.HandleList)
	mux.HandleFunc("GET /words/{id}", h.HandleDetail)
	mux.HandleFunc("POST /words/{id}/favorite", h.HandleFavorite)
	mux.HandleFunc("DELETE /words/{id}", h.HandleDelete)
	mux.HandleFunc("GET /categories", h.HandleCategories)
	mux.HandleFunc("GET /stats", h.HandleStats)
	mux.HandleFunc("GET /exercises", h.HandleExercises)
	mux.HandleFunc("GET /exercises/{id}", h.HandleExercise)

	// JSON API
	mux.HandleFunc("GET /api/words", h.APIList)
	mux.HandleFunc("POST /api/words", h.APIAdd)
	mux.HandleFunc("GET /api/words/{id}", h.APIFetch)
	mux.HandleFunc("PATCH /api/words/{id}", h.APIUpdate)
	mux.HandleFunc("DELETE /api/words/{id}", h.APIDelete)
	mux.HandleFunc("POST /api/words/{id}/attempts", h.APIRecord)
	mux.HandleFunc("GET /api/categories", h.APICategories)
	mux.HandleFunc("GET /api/stats", h.APIStats)
	mux.HandleFunc("GET /api/exercises", h.APIExercises)
	mux.HandleFunc("POST /api/exercises", h.APIGenerate)
	mux.HandleFunc("GET /api/exercises/{id}", h.APIExercise)
	mux.HandleFunc("POST /api/exercises/{id}/submit", h.APISubmit)
	mux.HandleFunc("POST /api/exercises/{id}/retry", h.APIRetry)
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'self'; style-src 'self'")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response status for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// requestLog logs one line per request at debug level.
func requestLog(log *logger.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}

// Run starts the HTTP server and handles graceful shutdown on SIGINT/SIGTERM.
// onShutdown, if non-nil, runs after the listener stops.
func Run(srv *http.Server, log *logger.Logger, onShutdown func()) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("lingo UI running", "url", "http://"+srv.Addr)

	if strings.Contains(srv.Addr, "0.0.0.0") || strings.Contains(srv.Addr, "::") {
		log.Warn("server is binding to all interfaces and may be accessible from the network")
	}

	defer func() {
		if onShutdown != nil {
			onShutdown()
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
