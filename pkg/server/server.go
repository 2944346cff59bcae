// Package server exposes the extraction/translation review workflow over
// HTTP and streams staged progress over websockets.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"podcast-studio/pkg/domain"
	"podcast-studio/pkg/extraction"
	"podcast-studio/pkg/review"
	"podcast-studio/pkg/translation"
)

// Store is the slice of the database layer the HTTP surface needs. Satisfied
// by db.Store.
type Store interface {
	review.TranslationStore
	review.ApplyStore
	ListLanguages(ctx context.Context) ([]domain.Language, error)
	ListEpisodes(ctx context.Context, limit int) ([]domain.Episode, error)
	ListTemplates(ctx context.Context) ([]domain.Template, error)
}

// Server wires the orchestrators, the session manager, and the store into an
// HTTP API.
type Server struct {
	logger *slog.Logger
	router *chi.Mux

	sessions   *review.Manager
	extractor  *extraction.Orchestrator
	translator *translation.Orchestrator
	store      Store

	upgrader websocket.Upgrader

	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{}
}

// New creates a Server and registers its routes.
func New(logger *slog.Logger, sessions *review.Manager, extractor *extraction.Orchestrator, translator *translation.Orchestrator, store Store) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		logger:     logger,
		router:     chi.NewRouter(),
		sessions:   sessions,
		extractor:  extractor,
		translator: translator,
		store:      store,
		subs:       make(map[string]map[*subscriber]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	s.registerRoutes()
	return s
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(5 * time.Minute))

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.createSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.getSession)
			r.Delete("/", s.discardSession)
			r.Post("/extract", s.extract)
			r.Post("/translate", s.translate)
			r.Patch("/translations/{lang}/fields/{field}", s.editField)
			r.Post("/translations/{lang}/save", s.saveTranslation)
			r.Post("/apply", s.apply)
		})

		r.Get("/languages", s.listLanguages)
		r.Get("/episodes", s.listEpisodes)
		r.Get("/templates", s.listTemplates)
	})

	s.router.Get("/ws/sessions/{id}", s.sessionWS)
	s.router.Get("/healthz", s.health)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// StartSweepLoop periodically drops terminal sessions older than maxAge.
func (s *Server) StartSweepLoop(stop <-chan struct{}, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if removed := s.sessions.Sweep(maxAge); removed > 0 {
					s.logger.Info("swept terminal sessions", "removed", removed)
				}
			case <-stop:
				return
			}
		}
	}()
}
