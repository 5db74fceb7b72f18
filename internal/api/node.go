package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avfabric/medianode-core/internal/resource"
)

// resourceKind names a registration API collection and its backing
// resource type.
type resourceKind struct {
	name string
	typ  resource.Type
}

var (
	resourceDevices   = resourceKind{"device", resource.TypeDevice}
	resourceSources   = resourceKind{"source", resource.TypeSource}
	resourceFlows     = resourceKind{"flow", resource.TypeFlow}
	resourceSenders   = resourceKind{"sender", resource.TypeSender}
	resourceReceivers = resourceKind{"receiver", resource.TypeReceiver}
)

// handleSelf returns the node's own resource document.
func (s *Server) handleSelf(w http.ResponseWriter, _ *http.Request) {
	s.model.Lock()
	nodes := s.model.Registration.ListByType(resource.TypeNode)
	s.model.Unlock()

	if len(nodes) == 0 {
		writeNotFound(w, "node resource not present")
		return
	}
	writeJSON(w, http.StatusOK, nodes[0].Data)
}

// handleListResources returns all resource documents of one kind.
// ListByType returns deep copies, so the documents are safe to
// serialize after the lock is released.
func (s *Server) handleListResources(kind resourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.model.Lock()
		resources := s.model.Registration.ListByType(kind.typ)
		s.model.Unlock()

		docs := make([]resource.Data, 0, len(resources))
		for _, r := range resources {
			docs = append(docs, r.Data)
		}
		writeJSON(w, http.StatusOK, docs)
	}
}

// handleGetResource returns a single resource document by id.
func (s *Server) handleGetResource(kind resourceKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		s.model.Lock()
		res, err := s.model.Registration.Find(id, kind.typ)
		var doc resource.Data
		if err == nil {
			doc = resource.DeepCopyData(res.Data)
		}
		s.model.Unlock()

		if doc == nil {
			writeNotFound(w, kind.name+" not found: "+id)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}
