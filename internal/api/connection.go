package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avfabric/medianode-core/internal/connection"
	"github.com/avfabric/medianode-core/internal/model"
	"github.com/avfabric/medianode-core/internal/resource"
)

// connectionRole names a connection API collection and its backing
// resource type.
type connectionRole struct {
	name string
	typ  resource.Type
}

var (
	roleSender   = connectionRole{"sender", resource.TypeConnectionSender}
	roleReceiver = connectionRole{"receiver", resource.TypeConnectionReceiver}
)

// Endpoint selectors within a connection resource.
const (
	endpointStaged = connection.FieldStaged
	endpointActive = connection.FieldActive
)

// handleListConnections returns the ids of all connection resources of
// one role, each with a trailing slash per the API convention.
func (s *Server) handleListConnections(role connectionRole) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		s.model.Lock()
		resources := s.model.Connection.ListByType(role.typ)
		s.model.Unlock()

		ids := make([]string, 0, len(resources))
		for _, r := range resources {
			ids = append(ids, r.ID+"/")
		}
		writeJSON(w, http.StatusOK, ids)
	}
}

// handleGetEndpoint returns the staged or active sub-document of a
// connection resource.
func (s *Server) handleGetEndpoint(role connectionRole, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		s.model.Lock()
		connRes, err := s.model.Connection.Find(id, role.typ)
		var doc resource.Data
		if err == nil {
			doc = resource.DeepCopyData(connRes.Data.Object(endpoint))
		}
		s.model.Unlock()

		if doc == nil {
			writeNotFound(w, role.name+" not found: "+id)
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

// handlePatchStaged merges a staged patch into a connection resource
// and, when the patch requests immediate activation, drives the
// activation engine before responding.
//
// The response is the staged document after merge, or the active
// document after a successful immediate activation, matching what a
// controller polls for next.
func (s *Server) handlePatchStaged(role connectionRole) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		var patch resource.Data
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeBadRequest(w, "invalid JSON body")
			return
		}

		s.model.Lock()
		_, err := s.model.Connection.Find(id, role.typ)
		s.model.Unlock()
		if err != nil {
			writeNotFound(w, role.name+" not found: "+id)
			return
		}

		staged, err := s.engine.Stage(id, patch)
		if err != nil {
			s.writeEngineError(w, id, err)
			return
		}

		mode := staged.Object(connection.FieldActivation).String(connection.FieldMode)
		if mode != connection.ActivateImmediate {
			writeJSON(w, http.StatusOK, staged)
			return
		}

		if err := s.engine.Activate(id); err != nil {
			s.writeEngineError(w, id, err)
			return
		}

		s.model.Lock()
		connRes, err := s.model.Connection.Find(id, role.typ)
		var active resource.Data
		if err == nil {
			active = resource.DeepCopyData(connection.Active(connRes))
		}
		s.model.Unlock()

		if active == nil {
			writeInternalError(w, "connection resource vanished during activation")
			return
		}
		writeJSON(w, http.StatusOK, active)
	}
}

// handleTransportFile serves the RTP sender's session description with
// the content type recorded alongside it.
func (s *Server) handleTransportFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.model.Lock()
	connRes, err := s.model.Connection.Find(id, resource.TypeConnectionSender)
	var data, contentType string
	if err == nil {
		tf := connection.Active(connRes).Object(connection.FieldTransportFile)
		data = tf.String("data")
		contentType = tf.String("type")
	}
	s.model.Unlock()

	if err != nil {
		writeNotFound(w, "sender not found: "+id)
		return
	}
	if data == "" {
		writeNotFound(w, "sender has no transport file: "+id)
		return
	}
	if contentType == "" {
		contentType = "application/sdp"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write([]byte(data))
}

// writeEngineError maps activation engine failures onto HTTP statuses.
// Validation rejections are the client's fault; unresolved placeholders
// and missing references indicate a broken resolution policy or
// resource graph.
func (s *Server) writeEngineError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeNotFound(w, "connection resource not found: "+id)
	case errors.Is(err, connection.ErrValidationRejected):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	default:
		s.logger.Error("activation failed", "id", id, "error", err)
		writeInternalError(w, err.Error())
	}
}
