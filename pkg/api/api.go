// Package api exposes the menu service over HTTP: public reads with
// ETag/304 semantics under /api/menu, admin CRUD under /api/admin, plus
// health and Prometheus endpoints.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/bellavista/menu-api/pkg/repository"
	"github.com/bellavista/menu-api/pkg/responder"
)

// edgeCacheMaxAge is the Cache-Control lifetime hint for intermediary
// caches on fingerprinted resources. Staleness is version-driven; this
// only bounds how long an edge may reuse a response without revalidating.
const edgeCacheMaxAge = time.Hour

var requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "menu_http_request_duration_seconds",
	Help:    "HTTP request duration in seconds by route",
	Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
}, []string{"route"})

// Server wires the responder and repository into an HTTP handler.
type Server struct {
	responder *responder.Responder
	repo      *repository.Repository
	logger    zerolog.Logger
}

// NewServer creates the HTTP server layer.
func NewServer(res *responder.Responder, repo *repository.Repository, logger zerolog.Logger) *Server {
	return &Server{
		responder: res,
		repo:      repo,
		logger:    logger.With().Str("component", "api").Logger(),
	}
}

// Router builds the chi route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(s.timing)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/menu", func(r chi.Router) {
		r.Get("/items", s.handleItems)
		r.Get("/categories", s.handleCategories)
		r.Get("/modifiers", s.handleModifiers)
		r.Get("/version", s.handleVersion)
		r.Get("/announcements", s.handleAnnouncements)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/items", s.handleSaveItem)
		r.Put("/items/{id}", s.handleSaveItem)
		r.Delete("/items/{id}", s.handleDeleteItem)

		r.Post("/categories", s.handleSaveCategory)
		r.Put("/categories/{id}", s.handleSaveCategory)
		r.Delete("/categories/{id}", s.handleDeleteCategory)

		r.Post("/modifier-groups", s.handleSaveModifierGroup)
		r.Put("/modifier-groups/{id}", s.handleSaveModifierGroup)
		r.Delete("/modifier-groups/{id}", s.handleDeleteModifierGroup)

		r.Post("/modifiers", s.handleSaveModifier)
		r.Put("/modifiers/{id}", s.handleSaveModifier)
		r.Delete("/modifiers/{id}", s.handleDeleteModifier)

		r.Post("/announcements", s.handleSaveAnnouncement)
		r.Put("/announcements/{id}", s.handleSaveAnnouncement)
		r.Delete("/announcements/{id}", s.handleDeleteAnnouncement)
	})

	return r
}

// timing records per-route request durations.
func (s *Server) timing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write response body")
	}
}

// writeJSON writes v as a JSON response body.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to write response body")
	}
}

// writeError writes a JSON error body.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
