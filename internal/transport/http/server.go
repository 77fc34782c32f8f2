package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	catalogDomain "github.com/reshetovitsme/rss-catalog/internal/modules/catalog/domain"
	feedDomain "github.com/reshetovitsme/rss-catalog/internal/modules/feed/domain"
	"github.com/reshetovitsme/rss-catalog/internal/shared/config"
	sharedErrors "github.com/reshetovitsme/rss-catalog/internal/shared/errors"
	sloghttp "github.com/samber/slog-http"
)

// CatalogReader is the read side of the catalog service
type CatalogReader interface {
	Catalog() (*catalogDomain.Catalog, error)
	Categories() ([]catalogDomain.Summary, error)
	Category(key string) (*catalogDomain.Category, error)
}

// FeedRenderer renders a category as a feed
type FeedRenderer interface {
	Render(categoryKey string, baseURL string, format feedDomain.Format) (string, error)
}

// Server exposes the catalog read-only over HTTP
type Server struct {
	cfg     *config.Config
	catalog CatalogReader
	feeds   FeedRenderer
	logger  *slog.Logger
}

// New creates a new HTTP server
func New(cfg *config.Config, catalog CatalogReader, feeds FeedRenderer) *Server {
	return &Server{
		cfg:     cfg,
		catalog: catalog,
		feeds:   feeds,
		logger:  slog.Default(),
	}
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Handler returns the routes wrapped in access logging and panic recovery
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /catalog", s.handleCatalog)
	mux.HandleFunc("GET /categories", s.handleCategories)
	mux.HandleFunc("GET /categories/{key}", s.handleCategory)
	mux.HandleFunc("GET /categories/{key}/feed", s.handleFeed)

	handler := sloghttp.Recovery(mux)
	handler = sloghttp.New(s.logger)(handler)

	return handler
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%s", s.cfg.HTTPPort)
	s.logger.Info("Catalog viewer starting", "addr", addr, "catalog", s.cfg.CatalogPath)

	server := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.catalog.Catalog()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, catalog)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.catalog.Categories()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleCategory(w http.ResponseWriter, r *http.Request) {
	category, err := s.catalog.Category(r.PathValue("key"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, category)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	format := feedDomain.FormatRss
	if raw := r.URL.Query().Get("format"); raw != "" {
		parsed, err := feedDomain.ParseFormat(raw)
		if err != nil {
			http.Error(w, fmt.Sprintf("Unknown feed format %q", raw), http.StatusBadRequest)
			return
		}
		format = parsed
	}

	baseURL := fmt.Sprintf("%s://%s", getScheme(r), r.Host)
	out, err := s.feeds.Render(key, baseURL, format)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(out))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.logger.Error("Error writing response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, sharedErrors.ErrCategoryNotFound) {
		http.Error(w, "Category not found", http.StatusNotFound)
		return
	}

	s.logger.Error("Error reading catalog", "error", err)
	http.Error(w, "Failed to read catalog", http.StatusInternalServerError)
}

func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
