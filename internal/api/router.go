package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// API version prefixes served by this node.
const (
	nodeAPIPrefix       = "/x-nmos/node/v1.3"
	connectionAPIPrefix = "/x-nmos/connection/v1.1"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Health check
	r.Get("/health", s.handleHealth)

	// Registration API (read-only resource views)
	r.Route(nodeAPIPrefix, func(r chi.Router) {
		r.Get("/self", s.handleSelf)

		r.Get("/devices", s.handleListResources(resourceDevices))
		r.Get("/devices/{id}", s.handleGetResource(resourceDevices))
		r.Get("/sources", s.handleListResources(resourceSources))
		r.Get("/sources/{id}", s.handleGetResource(resourceSources))
		r.Get("/flows", s.handleListResources(resourceFlows))
		r.Get("/flows/{id}", s.handleGetResource(resourceFlows))
		r.Get("/senders", s.handleListResources(resourceSenders))
		r.Get("/senders/{id}", s.handleGetResource(resourceSenders))
		r.Get("/receivers", s.handleListResources(resourceReceivers))
		r.Get("/receivers/{id}", s.handleGetResource(resourceReceivers))
	})

	// Connection API (staged/active transport management)
	r.Route(connectionAPIPrefix+"/single", func(r chi.Router) {
		r.Route("/senders", func(r chi.Router) {
			r.Get("/", s.handleListConnections(roleSender))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/staged", s.handleGetEndpoint(roleSender, endpointStaged))
				r.Patch("/staged", s.handlePatchStaged(roleSender))
				r.Get("/active", s.handleGetEndpoint(roleSender, endpointActive))
				r.Get("/transportfile", s.handleTransportFile)
			})
		})
		r.Route("/receivers", func(r chi.Router) {
			r.Get("/", s.handleListConnections(roleReceiver))
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/staged", s.handleGetEndpoint(roleReceiver, endpointStaged))
				r.Patch("/staged", s.handlePatchStaged(roleReceiver))
				r.Get("/active", s.handleGetEndpoint(roleReceiver, endpointActive))
			})
		})
	})

	// Events WebSocket
	wsPath := s.wsCfg.Path
	if wsPath == "" {
		wsPath = "/ws"
	}
	r.Get(wsPath, s.handleWebSocket)

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
