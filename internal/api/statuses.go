package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/shaharia-lab/emailnotify/internal/service"
)

// handleListStatuses returns recent status log entries.
// Accepts an optional ?limit=N query parameter (default 50).
func (s *Server) handleListStatuses(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	entries, err := s.statusSvc.ListRecent(r.Context(), limit)
	if err != nil {
		if service.IsValidation(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("failed to list statuses", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list statuses")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// handleGetStatusHistory returns every status recorded for one request.
func (s *Server) handleGetStatusHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "correlationID")

	entries, err := s.statusSvc.History(r.Context(), id)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, entries)
	case service.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case service.IsValidation(err):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("failed to load status history", "correlation_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load status history")
	}
}
