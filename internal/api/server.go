package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/emailnotify/internal/service"
)

// Server holds all dependencies for the REST API handlers.
type Server struct {
	statusSvc service.StatusService
	logger    *slog.Logger
}

// New creates a new API Server backed by the provided services.
func New(statusSvc service.StatusService, logger *slog.Logger) *Server {
	return &Server{
		statusSvc: statusSvc,
		logger:    logger,
	}
}

// Mount registers all API routes under the given router.
func (s *Server) Mount(r chi.Router) {
	r.Get("/version", s.handleVersion)

	// Request status history
	r.Get("/statuses", s.handleListStatuses)
	r.Get("/statuses/{correlationID}", s.handleGetStatusHistory)
}

// ─── Shared helpers ───────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
