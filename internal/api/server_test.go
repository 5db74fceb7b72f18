package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avfabric/medianode-core/internal/connection"
	"github.com/avfabric/medianode-core/internal/events"
	"github.com/avfabric/medianode-core/internal/infrastructure/config"
	"github.com/avfabric/medianode-core/internal/infrastructure/logging"
	"github.com/avfabric/medianode-core/internal/model"
	"github.com/avfabric/medianode-core/internal/node"
	"github.com/avfabric/medianode-core/internal/resource"
)

const testSeed = "9c1a6e28-4b37-44e2-9a14-1a1f6f9f4d21"

// testServer creates a Server over a fully built resource graph.
func testServer(t *testing.T) (*Server, node.IDs) {
	t.Helper()

	m := model.New(model.Settings{
		SeedID:        testSeed,
		Label:         "test node",
		Host:          "127.0.0.1",
		Port:          3212,
		EventsEnabled: true,
	})
	if err := node.BuildResources(m, nil); err != nil {
		t.Fatalf("BuildResources: %v", err)
	}

	subs := events.NewSubscriptions()
	engine := connection.NewEngine(m, connection.Callbacks{
		ResolveAuto:      node.MakeAutoResolver(m.Settings),
		SetTransportFile: node.MakeTransportFileSetter(m),
		OnActivated:      node.MakeActivationHandler(m, subs, nil),
	})

	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Port: 0,
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		WS: config.WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logger:  log,
		Model:   m,
		Engine:  engine,
		Version: "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	// Initialise hub for tests without starting the listener
	srv.hub = NewHub(srv.wsCfg, log)

	return srv, node.DeriveIDs(testSeed)
}

func doRequest(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.buildRouter().ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

func TestHandleHealth(t *testing.T) {
	srv, _ := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body map[string]any
	decodeJSON(t, rec, &body)
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestHandleSelf(t *testing.T) {
	srv, ids := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/x-nmos/node/v1.3/self", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var doc map[string]any
	decodeJSON(t, rec, &doc)
	if doc["id"] != ids.Node {
		t.Errorf("self id = %v, want %s", doc["id"], ids.Node)
	}
	if doc["label"] != "test node" {
		t.Errorf("self label = %v", doc["label"])
	}
}

func TestHandleListAndGetResources(t *testing.T) {
	srv, ids := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/x-nmos/node/v1.3/senders", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", rec.Code)
	}
	var docs []map[string]any
	decodeJSON(t, rec, &docs)
	if len(docs) != 2 {
		t.Fatalf("listed %d senders, want 2", len(docs))
	}

	rec = doRequest(t, srv, http.MethodGet, "/x-nmos/node/v1.3/senders/"+ids.Sender, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", rec.Code)
	}
	var doc map[string]any
	decodeJSON(t, rec, &doc)
	if doc["flow_id"] != ids.Flow {
		t.Errorf("sender flow_id = %v", doc["flow_id"])
	}

	rec = doRequest(t, srv, http.MethodGet, "/x-nmos/node/v1.3/senders/not-a-real-id", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown sender status = %d, want 404", rec.Code)
	}

	// Type confusion: a receiver id is not a sender
	rec = doRequest(t, srv, http.MethodGet, "/x-nmos/node/v1.3/senders/"+ids.Receiver, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-type lookup status = %d, want 404", rec.Code)
	}
}

func TestHandleListConnections(t *testing.T) {
	srv, ids := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/x-nmos/connection/v1.1/single/senders/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var idsList []string
	decodeJSON(t, rec, &idsList)
	if len(idsList) != 2 {
		t.Fatalf("listed %d connection senders, want 2", len(idsList))
	}
	found := false
	for _, entry := range idsList {
		if entry == ids.Sender+"/" {
			found = true
		}
		if !strings.HasSuffix(entry, "/") {
			t.Errorf("entry %q lacks trailing slash", entry)
		}
	}
	if !found {
		t.Errorf("RTP sender %s missing from %v", ids.Sender, idsList)
	}
}

func TestHandleGetStagedAndActive(t *testing.T) {
	srv, ids := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/x-nmos/connection/v1.1/single/senders/"+ids.Sender+"/staged", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("staged status = %d, want 200", rec.Code)
	}
	var staged map[string]any
	decodeJSON(t, rec, &staged)
	if staged["master_enable"] != false {
		t.Errorf("staged master_enable = %v, want false", staged["master_enable"])
	}

	rec = doRequest(t, srv, http.MethodGet, "/x-nmos/connection/v1.1/single/senders/"+ids.Sender+"/active", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("active status = %d, want 200", rec.Code)
	}
	var active map[string]any
	decodeJSON(t, rec, &active)
	legs, _ := active["transport_params"].([]any)
	if len(legs) != 2 {
		t.Fatalf("active has %d legs, want 2", len(legs))
	}
	leg0, _ := legs[0].(map[string]any)
	if leg0["source_ip"] != "192.168.255.0" {
		t.Errorf("active leg 0 source_ip = %v", leg0["source_ip"])
	}

	// Role confusion: a sender id under the receivers collection
	rec = doRequest(t, srv, http.MethodGet, "/x-nmos/connection/v1.1/single/receivers/"+ids.Sender+"/staged", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-role staged status = %d, want 404", rec.Code)
	}
}

func TestHandlePatchStagedImmediateActivation(t *testing.T) {
	srv, ids := testServer(t)

	body := `{
		"master_enable": true,
		"activation": {"mode": "activate_immediate"},
		"transport_params": [
			{"source_ip": "auto", "destination_port": "auto"},
			{"source_ip": "auto"}
		]
	}`
	rec := doRequest(t, srv, http.MethodPatch, "/x-nmos/connection/v1.1/single/senders/"+ids.Sender+"/staged", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var active map[string]any
	decodeJSON(t, rec, &active)
	if active["master_enable"] != true {
		t.Errorf("active master_enable = %v, want true", active["master_enable"])
	}
	legs, _ := active["transport_params"].([]any)
	leg0, _ := legs[0].(map[string]any)
	if leg0["source_ip"] != "192.168.255.0" {
		t.Errorf("resolved source_ip = %v, want 192.168.255.0", leg0["source_ip"])
	}
	if leg0["destination_port"] != float64(5004) {
		t.Errorf("resolved destination_port = %v, want 5004", leg0["destination_port"])
	}
	activation, _ := active["activation"].(map[string]any)
	if activation["activation_time"] == nil || activation["activation_time"] == "" {
		t.Error("activation_time not recorded")
	}
}

func TestHandlePatchStagedWithoutActivation(t *testing.T) {
	srv, ids := testServer(t)

	rec := doRequest(t, srv, http.MethodPatch,
		"/x-nmos/connection/v1.1/single/senders/"+ids.Sender+"/staged",
		`{"master_enable": true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var staged map[string]any
	decodeJSON(t, rec, &staged)
	if staged["master_enable"] != true {
		t.Errorf("staged master_enable = %v, want true", staged["master_enable"])
	}

	// Without an activation request the active document is untouched.
	rec = doRequest(t, srv, http.MethodGet, "/x-nmos/connection/v1.1/single/senders/"+ids.Sender+"/active", "")
	var active map[string]any
	decodeJSON(t, rec, &active)
	if active["master_enable"] != false {
		t.Errorf("active master_enable = %v, staging alone must not activate", active["master_enable"])
	}
}

func TestHandlePatchStagedErrors(t *testing.T) {
	srv, ids := testServer(t)

	rec := doRequest(t, srv, http.MethodPatch,
		"/x-nmos/connection/v1.1/single/senders/not-a-real-id/staged",
		`{"master_enable": true}`)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPatch,
		"/x-nmos/connection/v1.1/single/senders/"+ids.Sender+"/staged",
		`{not json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid body status = %d, want 400", rec.Code)
	}
}

func TestHandlePatchStagedRejectsSurplusLegs(t *testing.T) {
	srv, ids := testServer(t)

	// The sender is constructed with two legs; a third has no
	// resolution rules and no place in the transport file.
	body := `{
		"activation": {"mode": "activate_immediate"},
		"transport_params": [
			{"source_ip": "auto"},
			{"source_ip": "auto"},
			{"source_ip": "192.0.2.9", "destination_ip": "233.252.0.9", "destination_port": 5004}
		]
	}`
	rec := doRequest(t, srv, http.MethodPatch, "/x-nmos/connection/v1.1/single/senders/"+ids.Sender+"/staged", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}

	// The rejected patch must not have grown the staged document, and
	// the API must still be serving requests.
	rec = doRequest(t, srv, http.MethodGet, "/x-nmos/connection/v1.1/single/senders/"+ids.Sender+"/staged", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("staged GET after rejected patch = %d, want 200", rec.Code)
	}
	var staged map[string]any
	decodeJSON(t, rec, &staged)
	legs, _ := staged["transport_params"].([]any)
	if len(legs) != 2 {
		t.Errorf("staged has %d legs after rejected patch, want 2", len(legs))
	}
}

func TestHandleTransportFile(t *testing.T) {
	srv, ids := testServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/x-nmos/connection/v1.1/single/senders/"+ids.Sender+"/transportfile", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/sdp" {
		t.Errorf("Content-Type = %q, want application/sdp", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "v=0") {
		t.Errorf("transport file body does not look like a session description:\n%s", rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodGet, "/x-nmos/connection/v1.1/single/senders/not-a-real-id/transportfile", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	m := model.New(model.Settings{})
	engine := connection.NewEngine(m, connection.Callbacks{})

	if _, err := New(Deps{Logger: nil, Model: m, Engine: engine}); err == nil {
		t.Error("New without logger should fail")
	}
	if _, err := New(Deps{Logger: log, Model: nil, Engine: engine}); err == nil {
		t.Error("New without model should fail")
	}
	if _, err := New(Deps{Logger: log, Model: m, Engine: nil}); err == nil {
		t.Error("New without engine should fail")
	}
}

func TestHubPublishEventRespectsSubscriptions(t *testing.T) {
	log := logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
	hub := NewHub(config.WebSocketConfig{}, log)

	subscribed := &WSClient{
		hub:           hub,
		send:          make(chan []byte, 1),
		subscriptions: map[string]struct{}{"src-a": {}},
	}
	wildcard := &WSClient{
		hub:           hub,
		send:          make(chan []byte, 1),
		subscriptions: map[string]struct{}{WSSourceWildcard: {}},
	}
	other := &WSClient{
		hub:           hub,
		send:          make(chan []byte, 1),
		subscriptions: map[string]struct{}{"src-b": {}},
	}
	hub.Register(subscribed)
	hub.Register(wildcard)
	hub.Register(other)

	hub.PublishEvent("src-a", resource.Data{"event_type": "number/temperature/C"})

	for name, c := range map[string]*WSClient{"subscribed": subscribed, "wildcard": wildcard} {
		select {
		case data := <-c.send:
			var msg WSMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("%s: decoding message: %v", name, err)
			}
			if msg.Type != WSTypeState || msg.SourceID != "src-a" {
				t.Errorf("%s: message = %+v", name, msg)
			}
		default:
			t.Errorf("%s client received nothing", name)
		}
	}

	select {
	case <-other.send:
		t.Error("client subscribed to another source received the event")
	default:
	}
}
