// Package server exposes recipe extraction over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/hammamikhairi/ottoweb/internal/domain"
	"github.com/hammamikhairi/ottoweb/internal/logger"
)

// Error bodies returned by /api/recipe.
const (
	msgMissingURL  = "Missing url parameter"
	msgFetchFailed = "Failed to fetch recipe page"
	msgParseFailed = "Could not parse recipe"
)

// Option configures a Server.
type Option func(*Server)

// WithStaticDir serves a browser front end from dir, falling back to
// dir/index.html for unknown paths.
func WithStaticDir(dir string) Option {
	return func(s *Server) { s.staticDir = dir }
}

// WithStore exposes the recipe cache at /api/recipes.
func WithStore(store domain.RecipeStore) Option {
	return func(s *Server) { s.store = store }
}

// WithTimeouts sets the HTTP server read and write timeouts.
func WithTimeouts(read, write time.Duration) Option {
	return func(s *Server) {
		if read > 0 {
			s.readTimeout = read
		}
		if write > 0 {
			s.writeTimeout = write
		}
	}
}

// Server is the HTTP API.
type Server struct {
	loader       domain.RecipeLoader
	store        domain.RecipeStore
	staticDir    string
	readTimeout  time.Duration
	writeTimeout time.Duration
	log          *logger.Logger
}

// New creates the API server.
func New(loader domain.RecipeLoader, log *logger.Logger, opts ...Option) *Server {
	s := &Server{
		loader:       loader,
		readTimeout:  10 * time.Second,
		writeTimeout: 30 * time.Second,
		log:          log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/api/recipe", s.getRecipe)
	if s.store != nil {
		r.Get("/api/recipes", s.listRecipes)
	}
	if s.staticDir != "" {
		r.Get("/*", s.serveStatic)
	}
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening on %s", addr)
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
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		s.log.Info("server stopped")
		return nil
	}
}

func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		respondError(w, msgMissingURL, http.StatusBadRequest)
		return
	}

	recipe, err := s.loader.Load(r.Context(), url)
	if err != nil {
		s.log.Warn("recipe %s: %v", url, err)
		respondError(w, errorMessage(err), http.StatusInternalServerError)
		return
	}
	respondJSON(w, recipe, http.StatusOK)
}

func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	recipes, err := s.store.List(r.Context())
	if err != nil {
		respondError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if recipes == nil {
		recipes = []*domain.Recipe{}
	}
	respondJSON(w, recipes, http.StatusOK)
}

// errorMessage maps a load failure to the client-facing message.
func errorMessage(err error) string {
	var fe *domain.FetchError
	switch {
	case errors.As(err, &fe) && fe.StatusCode != 0:
		return msgFetchFailed
	case errors.Is(err, domain.ErrExtraction):
		return msgParseFailed
	case errors.Is(err, domain.ErrMissingURL):
		return msgMissingURL
	default:
		return err.Error()
	}
}

func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.staticDir, filepath.FromSlash(filepath.Clean("/"+r.URL.Path)))
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		http.ServeFile(w, r, path)
		return
	}
	http.ServeFile(w, r, filepath.Join(s.staticDir, "index.html"))
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("%s %s -> %d (%d bytes, %s) [%s]",
			r.Method, r.URL.RequestURI(), ww.Status(), ww.BytesWritten(),
			time.Since(start).Round(time.Millisecond), middleware.GetReqID(r.Context()))
	})
}

func respondJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, msg string, status int) {
	respondJSON(w, map[string]string{"error": msg}, status)
}
