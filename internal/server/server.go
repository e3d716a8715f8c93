// Package server exposes the suggestion, article and trending pipelines as
// a small JSON API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pders01/wkpd/internal/article"
	"github.com/pders01/wkpd/internal/debuglog"
	"github.com/pders01/wkpd/internal/session"
	"github.com/pders01/wkpd/internal/validation"
	"github.com/pders01/wkpd/internal/wiki"
)

// Wiki is the part of the wiki client the handlers need.
type Wiki interface {
	Site() wiki.Site
	MostViewed(ctx context.Context) ([]wiki.TrendingPage, error)
	Suggest(ctx context.Context, query string) ([]wiki.Candidate, error)
	Parse(ctx context.Context, title string) (*wiki.Article, error)
}

// Server holds the handlers and their dependencies.
type Server struct {
	wiki      Wiki
	sanitizer article.Sanitizer
	version   string

	mu  sync.Mutex
	rnd *rand.Rand
}

func New(client Wiki, relatedLimit int, version string) *Server {
	return &Server{
		wiki:      client,
		sanitizer: article.Sanitizer{Site: client.Site(), RelatedLimit: relatedLimit},
		version:   version,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.corsMiddleware)
	r.Use(s.loggingMiddleware)

	r.HandleFunc("/healthz", s.healthHandler).Methods(http.MethodGet, http.MethodOptions)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/trending", s.trendingHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/suggest", s.suggestHandler).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/article/{title:.+}", s.articleHandler).Methods(http.MethodGet, http.MethodOptions)

	return r
}

type articleResponse struct {
	Title     string   `json:"title"`
	HTML      string   `json:"html"`
	Related   []string `json:"related"`
	SourceURL string   `json:"source_url"`
}

type suggestResponse struct {
	Candidates []wiki.Candidate `json:"candidates"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"site":    s.wiki.Site().Code,
		"version": s.version,
	})
}

func (s *Server) trendingHandler(w http.ResponseWriter, r *http.Request) {
	pages, err := s.wiki.MostViewed(r.Context())
	if err != nil {
		s.upstreamError(w, "trending", err)
		return
	}

	s.mu.Lock()
	page, ok := wiki.PickRandom(pages, s.rnd)
	s.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"title": page.Title})
}

func (s *Server) suggestHandler(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len([]rune(query)) < session.MinQueryLength {
		writeJSON(w, http.StatusOK, suggestResponse{Candidates: []wiki.Candidate{}})
		return
	}

	candidates, err := s.wiki.Suggest(r.Context(), query)
	if err != nil {
		s.upstreamError(w, "suggest", err)
		return
	}
	if candidates == nil {
		candidates = []wiki.Candidate{}
	}

	writeJSON(w, http.StatusOK, suggestResponse{Candidates: candidates})
}

func (s *Server) articleHandler(w http.ResponseWriter, r *http.Request) {
	title, err := validation.ValidateTitle(mux.Vars(r)["title"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	raw, err := s.wiki.Parse(r.Context(), title)
	if err != nil {
		s.upstreamError(w, "article", err)
		return
	}

	display, err := s.sanitizer.Sanitize(raw.RawMarkup, raw.Title)
	if err != nil {
		s.upstreamError(w, "article", err)
		return
	}

	related := display.Related
	if related == nil {
		related = []string{}
	}

	writeJSON(w, http.StatusOK, articleResponse{
		Title:     display.Title,
		HTML:      display.HTML,
		Related:   related,
		SourceURL: display.SourceURL,
	})
}

// upstreamError maps a wiki error to a status. Missing pages are 404,
// everything else is the upstream's fault.
func (s *Server) upstreamError(w http.ResponseWriter, pipeline string, err error) {
	debuglog.WithFields(map[string]interface{}{
		"pipeline": pipeline,
	}).Warnf("upstream error: %v", err)

	status := http.StatusBadGateway
	if errors.Is(err, wiki.ErrNoResult) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		debuglog.Errorf("encoding response: %v", err)
	}
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		debuglog.Infof("%s %s %d %v", r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter captures the status code for the access log.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
