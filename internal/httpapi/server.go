package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sfinx-hq/iris/internal/backend"
	"github.com/sfinx-hq/iris/internal/observability"
	"github.com/sfinx-hq/iris/internal/transcript"
)

// Server is the worker's ops surface: health, metrics, archived transcripts
// and context-cache invalidation. It never touches a live conversation.
type Server struct {
	client  *backend.Client
	archive transcript.Store
	metrics *observability.Metrics
}

func New(client *backend.Client, archive transcript.Store, metrics *observability.Metrics) *Server {
	return &Server{
		client:  client,
		archive: archive,
		metrics: metrics,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Get("/v1/interviews/{id}/transcript", s.handleGetTranscript)
	r.Post("/v1/interviews/{id}/context/invalidate", s.handleInvalidate)
	r.Post("/v1/context/invalidate", s.handleInvalidateAll)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (s *Server) handleGetTranscript(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "interview id required"})
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid limit"})
			return
		}
		limit = n
	}

	turns, err := s.archive.Turns(r.Context(), id, limit)
	if err != nil {
		respondJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	if turns == nil {
		turns = []transcript.TurnRecord{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"interview_id": id,
		"turns":        turns,
	})
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		respondJSON(w, http.StatusBadRequest, map[string]any{"error": "interview id required"})
		return
	}
	s.client.Invalidate(id)
	respondJSON(w, http.StatusOK, map[string]any{"invalidated": id})
}

func (s *Server) handleInvalidateAll(w http.ResponseWriter, _ *http.Request) {
	s.client.InvalidateAll()
	respondJSON(w, http.StatusOK, map[string]any{"invalidated": "all"})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
