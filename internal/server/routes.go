package server

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	r := s.router

	r.Get("/", s.serviceInfo)
	r.Get("/health", s.health)

	r.Route("/agents", func(r chi.Router) {
		r.Get("/", s.listAgents)
		r.Get("/registry", s.registryView)
		r.Get("/catalog", s.catalogView)
		r.Post("/reload", s.reloadRegistry)

		// Run history
		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.listRuns)
			r.Get("/{runID}", s.getRun)
		})

		r.Route("/{agentID}", func(r chi.Router) {
			r.Get("/versions", s.listVersions)
			r.Post("/run", s.runAgent)
		})
	})

	// Event streaming (SSE)
	r.Get("/events", s.events)
}
