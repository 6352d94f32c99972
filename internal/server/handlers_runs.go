package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agentry-ai/agentry/internal/runstore"
)

// defaultRunListLimit caps GET /agents/runs when no limit is given.
const defaultRunListLimit = 50

// listRuns handles GET /agents/runs
func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "run store is disabled")
		return
	}

	agentID := r.URL.Query().Get("agent_id")

	limit := defaultRunListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	runs, err := s.runs.List(r.Context(), agentID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}
	if runs == nil {
		runs = []*runstore.Run{}
	}

	writeJSON(w, http.StatusOK, runs)
}

// getRun handles GET /agents/runs/{runID}
func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "run store is disabled")
		return
	}

	runID := chi.URLParam(r, "runID")

	run, err := s.runs.Get(r.Context(), runID)
	if errors.Is(err, runstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, ErrCodeNotFound, "run not found: "+runID)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, run)
}
