package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/iloc-catalog-etl/internal/domain"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// CatalogProvider serves the enriched catalog of the last completed run.
type CatalogProvider interface {
	sharedobs.ReadinessChecker
	Result() (domain.EnrichedCatalog, bool)
}

// Server exposes health, readiness, metrics and catalog HTTP endpoints.
type Server struct {
	httpServer *http.Server
	catalog    CatalogProvider
	logger     *slog.Logger
}

// NewServer creates an HTTP server with /healthz, /readyz, /metrics,
// /catalog and /events/{id}/stations routes.
//
// Event IDs are usually resource URIs containing slashes; clients
// percent-encode them as a single path segment.
func NewServer(addr string, catalog CatalogProvider, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		catalog: catalog,
		logger:  logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(catalog))
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /catalog", s.handleCatalog)
	mux.HandleFunc("GET /events/{id}/stations", s.handleStations)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	cat, ok := s.catalog.Result()
	if !ok {
		writeNotReady(w)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, cat)
}

// stationsResponse is the body of GET /events/{id}/stations.
type stationsResponse struct {
	EventID   string                   `json:"event_id"`
	OriginID  string                   `json:"origin_id,omitempty"`
	Relocated bool                     `json:"relocated"`
	MaxDelta  float64                  `json:"max_delta"`
	MaxPct    float64                  `json:"max_pct"`
	Threshold float64                  `json:"threshold"`
	Stations  []domain.SelectedStation `json:"stations"`
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	cat, ok := s.catalog.Result()
	if !ok {
		writeNotReady(w)
		return
	}

	id := r.PathValue("id")
	ev, found := cat.Event(id)
	if !found {
		sharedobs.WriteJSON(w, http.StatusNotFound, map[string]string{
			"error":    "event not found",
			"event_id": id,
		})
		return
	}
	if ev.Selection == nil {
		sharedobs.WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":    ev.Error,
			"event_id": id,
		})
		return
	}

	sharedobs.WriteJSON(w, http.StatusOK, stationsResponse{
		EventID:   ev.Event.ID,
		OriginID:  ev.OriginID,
		Relocated: ev.Relocated,
		MaxDelta:  ev.Selection.MaxDelta,
		MaxPct:    ev.Selection.MaxPct,
		Threshold: ev.Selection.Threshold,
		Stations:  ev.Selection.Stations,
	})
}

func writeNotReady(w http.ResponseWriter) {
	sharedobs.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
		"status": "not ready",
		"error":  "enrichment run has not completed yet",
	})
}
