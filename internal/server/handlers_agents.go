package server

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agentry-ai/agentry/internal/catalog"
	"github.com/agentry-ai/agentry/internal/dispatch"
	"github.com/agentry-ai/agentry/internal/registry"
)

// maxRunPayloadBytes bounds the accepted run request body.
const maxRunPayloadBytes = 1 << 20

// VersionsResponse is the response body for GET /agents/{agentID}/versions.
type VersionsResponse struct {
	AgentID       string   `json:"agent_id"`
	LatestVersion string   `json:"latest_version"`
	Versions      []string `json:"versions"`
}

// serviceInfo handles GET /
func (s *Server) serviceInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service": serviceName,
		"version": s.config.Version,
		"status":  "ok",
		"endpoints": map[string]string{
			"health":       "/health",
			"registry":     "/agents/registry",
			"catalog":      "/agents/catalog",
			"invoke_agent": "/agents/{agent_id}/run",
			"events":       "/events",
		},
	})
}

// health handles GET /health
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"agents": s.reg.Snapshot().Len(),
	})
}

// listAgents handles GET /agents
func (s *Server) listAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.ListView(s.reg.Snapshot()))
}

// registryView handles GET /agents/registry
func (s *Server) registryView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.RegistryView(s.reg.Snapshot()))
}

// catalogView handles GET /agents/catalog
func (s *Server) catalogView(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")

	data, err := catalog.Render(catalog.CatalogView(s.reg.Snapshot()), format)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", catalogContentType(format))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func catalogContentType(format string) string {
	switch format {
	case catalog.FormatYAML:
		return "application/yaml"
	case catalog.FormatText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// listVersions handles GET /agents/{agentID}/versions
func (s *Server) listVersions(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")

	ix := s.reg.Snapshot()
	entry, ok := ix.Get(agentID)
	if !ok {
		_, err := ix.Resolve(agentID, "")
		writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, VersionsResponse{
		AgentID:       entry.AgentID,
		LatestVersion: entry.LatestVersion,
		Versions:      entry.Descending(),
	})
}

// runAgent handles POST /agents/{agentID}/run
//
// Both agent success and agent failure come back as 200 with the
// uniform envelope; the caller branches on its success flag. 4xx is
// reserved for resolution and payload errors, where no agent code ran.
func (s *Server) runAgent(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")
	version := r.URL.Query().Get("version")

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRunPayloadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrCodeInvalidRequest, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "reading request body failed")
		return
	}
	if len(payload) == 0 {
		payload = []byte("{}")
	}

	ctx := r.Context()
	if s.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.RunTimeout)
		defer cancel()
	}

	envelope, err := s.dispatcher.Run(ctx, agentID, version, payload, nil)
	if err != nil {
		var unknownAgent *registry.UnknownAgentError
		var unknownVersion *registry.UnknownVersionError
		var invalidInput *dispatch.InvalidInputError
		switch {
		case errors.As(err, &unknownAgent):
			writeError(w, http.StatusNotFound, ErrCodeNotFound, unknownAgent.Error())
		case errors.As(err, &unknownVersion):
			writeError(w, http.StatusBadRequest, ErrCodeInvalidRequest, unknownVersion.Error())
		case errors.As(err, &invalidInput):
			writeErrorWithDetails(w, http.StatusBadRequest, ErrCodeInvalidRequest, invalidInput.Error(), map[string]any{
				"agent_id": invalidInput.AgentID,
				"version":  invalidInput.Version,
				"reason":   invalidInput.Err.Error(),
			})
		default:
			writeError(w, http.StatusInternalServerError, ErrCodeInternalError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, envelope)
}

// reloadRegistry handles POST /agents/reload
func (s *Server) reloadRegistry(w http.ResponseWriter, r *http.Request) {
	if err := s.reg.Reload(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, ErrCodeReloadFailed, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reloaded": true,
		"agents":   s.reg.Snapshot().Len(),
	})
}
